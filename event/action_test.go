package event

import (
	"testing"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		id   string
		want Action
	}{
		{"spage:2", Action{Kind: SubjectPage, Index: 2}},
		{"spage:noop", Action{Kind: SubjectPageNoop}},
		{"subj:5", Action{Kind: SubjectPick, Index: 5}},
		{"rate:4", Action{Kind: Score, Index: 4}},
		{"conv:cancel", Action{Kind: CancelFlow}},
		{"dedit:0", Action{Kind: DraftEdit}},
		{"ddel:1", Action{Kind: DraftDelete, Index: 1}},
		{"dsubmit", Action{Kind: DraftSubmit}},
		{"dadd", Action{Kind: DraftAdd}},
		{"menu:3", Action{Kind: Menu, Index: 3}},
		{"vote:down:ab12cd34", Action{Kind: Vote, Direction: model.Down, ItemID: "ab12cd34"}},
		{"mod:approve:42:ab12cd34", Action{Kind: ModApprove, SubmitterID: "42", DraftID: "ab12cd34"}},
		{"mod:reason:42:ab12cd34:tooshort", Action{Kind: ModReason, SubmitterID: "42", DraftID: "ab12cd34", Reason: "tooshort"}},
		{"mod:ban:42:ab12cd34", Action{Kind: ModBan, SubmitterID: "42", DraftID: "ab12cd34"}},
		{"start:add_tok123", Action{Kind: Resume, Token: "tok123"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Decode(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.id, got.Encode())
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	for _, id := range []string{
		"", "spage", "spage:x", "subj:", "rate:1:2", "conv:other", "dsubmit:1",
		"vote:sideways:1", "vote:up:", "vote:up", "mod:approve:42", "mod:reason:42:d1",
		"mod:nuke:42:d1", "start:tok", "start:add_", "unknown:1",
	} {
		_, err := Decode(id)
		assert.ErrorIs(t, err, model.ErrInvalidInput, id)
	}
}

func TestIsModeration(t *testing.T) {
	assert.True(t, Action{Kind: ModBack}.IsModeration())
	assert.False(t, Action{Kind: Vote}.IsModeration())
}

func TestParseResumeArg(t *testing.T) {
	token, ok := ParseResumeArg(" add_abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = ParseResumeArg("abc")
	assert.False(t, ok)
}
