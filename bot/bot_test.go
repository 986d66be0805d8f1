package bot

import (
	"testing"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttons(n int) []model.Button {
	out := make([]model.Button, n)
	for i := range out {
		out[i] = model.Button{Label: "b", Data: event.Action{Kind: event.SubjectPick, Index: i}.Encode()}
	}
	return out
}

func TestPackKeepsFittingLayout(t *testing.T) {
	rows := [][]model.Button{buttons(2), buttons(1)}
	assert.Equal(t, rows, pack(rows))
}

func TestPackSplitsWideRows(t *testing.T) {
	out := pack([][]model.Button{buttons(7)})
	require.Len(t, out, 2)
	assert.Len(t, out[0], 5)
	assert.Len(t, out[1], 2)
}

func TestPackReflowsTallLayouts(t *testing.T) {
	var rows [][]model.Button
	for i := 0; i < 8; i++ {
		rows = append(rows, buttons(1))
	}
	out := pack(rows)
	require.Len(t, out, 2)
	assert.Len(t, out[0], 5)
	assert.Len(t, out[1], 3)

	rows = nil
	for i := 0; i < 10; i++ {
		rows = append(rows, buttons(3))
	}
	out = pack(rows)
	assert.Len(t, out, maxRows)
	for _, row := range out {
		assert.Len(t, row, maxRowButtons)
	}
}

func TestKeyboardAppendsMenu(t *testing.T) {
	rows := keyboard(model.Outgoing{Menu: []string{"✍️ Write", "📚 Materials"}})
	require.Len(t, rows, 1)
	assert.Equal(t, model.Button{Label: "✍️ Write", Data: "menu:0"}, rows[0][0])
	assert.Equal(t, model.Button{Label: "📚 Materials", Data: "menu:1"}, rows[0][1])
}

func TestComponentsRoundTrip(t *testing.T) {
	rows := [][]model.Button{
		{{Label: "👍 1", Data: "vote:up:d1"}, {Label: "👎 0", Data: "vote:down:d1"}},
		{{Label: "➕ More", URL: "https://example.com/start?x=add_t"}},
	}
	components := toComponents(rows)
	require.Len(t, components, 2)

	link := components[1].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, link.Style)
	assert.Empty(t, link.CustomID)

	// Received messages carry pointer components.
	received := make([]discordgo.MessageComponent, 0, len(components))
	for _, c := range components {
		row := c.(discordgo.ActionsRow)
		var inner []discordgo.MessageComponent
		for _, b := range row.Components {
			btn := b.(discordgo.Button)
			inner = append(inner, &btn)
		}
		received = append(received, &discordgo.ActionsRow{Components: inner})
	}
	assert.Equal(t, rows, fromComponents(received))
}

func TestButtonStyle(t *testing.T) {
	style, disabled := buttonStyle(model.Button{Data: "mod:approve:1:d"})
	assert.Equal(t, discordgo.SuccessButton, style)
	assert.False(t, disabled)

	style, _ = buttonStyle(model.Button{Data: "mod:ban:1:d"})
	assert.Equal(t, discordgo.DangerButton, style)

	style, disabled = buttonStyle(model.Button{Data: "spage:noop"})
	assert.Equal(t, discordgo.SecondaryButton, style)
	assert.True(t, disabled)

	style, _ = buttonStyle(model.Button{Data: "rate:3"})
	assert.Equal(t, discordgo.PrimaryButton, style)
}

func TestMessageEvent(t *testing.T) {
	msg := func(content string) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ChannelID: "dm",
			Content:   content,
			Author:    &discordgo.User{ID: "42", Username: "abel", GlobalName: "Abel"},
		}}
	}

	ev, ok := messageEvent(msg("Dr. Abebe"))
	require.True(t, ok)
	assert.Equal(t, event.Text, ev.Kind)
	assert.Equal(t, "Dr. Abebe", ev.Text)
	assert.Equal(t, "Abel", ev.DisplayName)

	ev, _ = messageEvent(msg("/start add_tok123"))
	assert.Equal(t, event.Start, ev.Kind)
	assert.Equal(t, "tok123", ev.ResumeToken)

	ev, _ = messageEvent(msg("/cancel"))
	assert.Equal(t, event.Cancel, ev.Kind)

	guild := msg("hi")
	guild.GuildID = "g1"
	_, ok = messageEvent(guild)
	assert.False(t, ok)

	bot := msg("hi")
	bot.Author.Bot = true
	_, ok = messageEvent(bot)
	assert.False(t, ok)
}

func componentInteraction(customID string, message *discordgo.Message) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "review",
		GuildID:   "g1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "7", Username: "mod"}, Roles: []string{"mods"}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
		Message:   message,
	}
}

func TestComponentEvent(t *testing.T) {
	card := &discordgo.Message{ID: "card-1", Content: "📩 **NEW REVIEW**"}
	ev, err := componentEvent(componentInteraction("mod:approve:42:d1", card))
	require.NoError(t, err)
	assert.Equal(t, event.Tap, ev.Kind)
	assert.Equal(t, "7", ev.UserID)
	assert.Equal(t, []string{"mods"}, ev.Roles)
	assert.Equal(t, event.ModApprove, ev.Action.Kind)
	assert.Equal(t, "card-1", ev.MessageID)
	assert.Equal(t, "📩 **NEW REVIEW**", ev.MessageText)
	assert.Equal(t, "i1", ev.Ref)

	_, err = componentEvent(componentInteraction("nonsense", card))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestComponentEventMenuBecomesText(t *testing.T) {
	menu := &discordgo.Message{
		ID: "m1",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.Button{Label: "✍️ Write Review", CustomID: "menu:0"},
			}},
		},
	}
	ev, err := componentEvent(componentInteraction("menu:0", menu))
	require.NoError(t, err)
	assert.Equal(t, event.Text, ev.Kind)
	assert.Equal(t, "✍️ Write Review", ev.Text)

	_, err = componentEvent(componentInteraction("menu:3", menu))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestResumeToken(t *testing.T) {
	assert.Equal(t, "abc", resumeToken("add_abc"))
	assert.Equal(t, "abc", resumeToken(" abc "))
}
