package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// ActionKind enumerates every button the bot renders.
type ActionKind int

const (
	SubjectPage ActionKind = iota + 1
	SubjectPageNoop
	SubjectPick
	Score
	CancelFlow
	DraftEdit
	DraftDelete
	DraftSubmit
	DraftAdd
	Vote
	ModApprove
	ModReject
	ModReason
	ModBack
	ModBan
	Resume
	Menu
)

// Action is a decoded button payload.
type Action struct {
	Kind        ActionKind
	Index       int
	Direction   model.Direction
	ItemID      string
	SubmitterID string
	DraftID     string
	Reason      string
	Token       string
}

// IsModeration reports whether the action belongs to the moderator surface.
func (a Action) IsModeration() bool {
	switch a.Kind {
	case ModApprove, ModReject, ModReason, ModBack, ModBan:
		return true
	}
	return false
}

const sep = ":"

// Encode renders the action as a button custom id.
func (a Action) Encode() string {
	switch a.Kind {
	case SubjectPage:
		return "spage" + sep + strconv.Itoa(a.Index)
	case SubjectPageNoop:
		return "spage" + sep + "noop"
	case SubjectPick:
		return "subj" + sep + strconv.Itoa(a.Index)
	case Score:
		return "rate" + sep + strconv.Itoa(a.Index)
	case CancelFlow:
		return "conv" + sep + "cancel"
	case DraftEdit:
		return "dedit" + sep + strconv.Itoa(a.Index)
	case DraftDelete:
		return "ddel" + sep + strconv.Itoa(a.Index)
	case DraftSubmit:
		return "dsubmit"
	case DraftAdd:
		return "dadd"
	case Vote:
		return strings.Join([]string{"vote", string(a.Direction), a.ItemID}, sep)
	case ModApprove:
		return strings.Join([]string{"mod", "approve", a.SubmitterID, a.DraftID}, sep)
	case ModReject:
		return strings.Join([]string{"mod", "reject", a.SubmitterID, a.DraftID}, sep)
	case ModReason:
		return strings.Join([]string{"mod", "reason", a.SubmitterID, a.DraftID, a.Reason}, sep)
	case ModBack:
		return strings.Join([]string{"mod", "back", a.SubmitterID, a.DraftID}, sep)
	case ModBan:
		return strings.Join([]string{"mod", "ban", a.SubmitterID, a.DraftID}, sep)
	case Resume:
		return "start" + sep + model.ResumeArgPrefix + a.Token
	case Menu:
		return "menu" + sep + strconv.Itoa(a.Index)
	}
	return ""
}

// Decode parses a custom id produced by Encode.
func Decode(customID string) (Action, error) {
	parts := strings.Split(customID, sep)
	bad := fmt.Errorf("%w: button %q", model.ErrInvalidInput, customID)

	index := func(kind ActionKind) (Action, error) {
		if len(parts) != 2 {
			return Action{}, bad
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, bad
		}
		return Action{Kind: kind, Index: n}, nil
	}

	switch parts[0] {
	case "spage":
		if len(parts) == 2 && parts[1] == "noop" {
			return Action{Kind: SubjectPageNoop}, nil
		}
		return index(SubjectPage)
	case "subj":
		return index(SubjectPick)
	case "rate":
		return index(Score)
	case "dedit":
		return index(DraftEdit)
	case "ddel":
		return index(DraftDelete)
	case "menu":
		return index(Menu)
	case "conv":
		if len(parts) == 2 && parts[1] == "cancel" {
			return Action{Kind: CancelFlow}, nil
		}
	case "dsubmit":
		if len(parts) == 1 {
			return Action{Kind: DraftSubmit}, nil
		}
	case "dadd":
		if len(parts) == 1 {
			return Action{Kind: DraftAdd}, nil
		}
	case "vote":
		if len(parts) != 3 || parts[2] == "" {
			return Action{}, bad
		}
		dir, err := model.ParseDirection(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: Vote, Direction: dir, ItemID: parts[2]}, nil
	case "mod":
		return decodeModeration(parts, bad)
	case "start":
		if len(parts) == 2 {
			if token, ok := ParseResumeArg(parts[1]); ok {
				return Action{Kind: Resume, Token: token}, nil
			}
		}
	}
	return Action{}, bad
}

func decodeModeration(parts []string, bad error) (Action, error) {
	if len(parts) < 4 || parts[2] == "" || parts[3] == "" {
		return Action{}, bad
	}
	a := Action{SubmitterID: parts[2], DraftID: parts[3]}
	switch {
	case parts[1] == "approve" && len(parts) == 4:
		a.Kind = ModApprove
	case parts[1] == "reject" && len(parts) == 4:
		a.Kind = ModReject
	case parts[1] == "back" && len(parts) == 4:
		a.Kind = ModBack
	case parts[1] == "ban" && len(parts) == 4:
		a.Kind = ModBan
	case parts[1] == "reason" && len(parts) == 5:
		a.Kind = ModReason
		a.Reason = parts[4]
	default:
		return Action{}, bad
	}
	return a, nil
}

// ParseResumeArg extracts the token from a start argument "add_<token>".
func ParseResumeArg(arg string) (string, bool) {
	token, ok := strings.CutPrefix(strings.TrimSpace(arg), model.ResumeArgPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
