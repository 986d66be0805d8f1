package bot

import (
	"fmt"
	"strings"

	"github.com/GbredngleK/NG-Insider-Bot/command"
	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/bwmarrin/discordgo"
)

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// interactionUser returns the caller and, inside a guild, their role ids.
func interactionUser(i *discordgo.Interaction) (*discordgo.User, []string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User, i.Member.Roles
	}
	return i.User, nil
}

// messageEvent converts a direct message. Typed "/start" and "/cancel"
// behave like the slash commands.
func messageEvent(m *discordgo.MessageCreate) (event.Event, bool) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return event.Event{}, false
	}
	ev := event.Event{
		Kind:        event.Text,
		UserID:      m.Author.ID,
		DisplayName: displayName(m.Author),
		Text:        m.Content,
		ChannelID:   m.ChannelID,
	}

	fields := strings.Fields(m.Content)
	if len(fields) == 0 {
		return ev, true
	}
	switch strings.ToLower(fields[0]) {
	case "/" + command.Start:
		ev.Kind = event.Start
		ev.Text = ""
		if len(fields) > 1 {
			ev.ResumeToken = resumeToken(fields[1])
		}
	case "/" + command.Cancel:
		ev.Kind = event.Cancel
		ev.Text = ""
	}
	return ev, true
}

// resumeToken accepts both "add_<token>" and a bare token.
func resumeToken(arg string) string {
	if token, ok := event.ParseResumeArg(arg); ok {
		return token
	}
	return strings.TrimSpace(arg)
}

func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// commandEvent converts /start and /cancel. Other commands are answered
// directly and report false.
func commandEvent(i *discordgo.Interaction) (event.Event, bool) {
	data := i.ApplicationCommandData()
	user, roles := interactionUser(i)
	if user == nil {
		return event.Event{}, false
	}
	ev := event.Event{
		UserID:      user.ID,
		DisplayName: displayName(user),
		Roles:       roles,
		Ref:         i.ID,
	}

	switch data.Name {
	case command.Start:
		ev.Kind = event.Start
		if arg := optionString(data, command.OptionToken); arg != "" {
			ev.ResumeToken = resumeToken(arg)
		}
	case command.Cancel:
		ev.Kind = event.Cancel
	default:
		return event.Event{}, false
	}
	return ev, true
}

// componentEvent converts a button press. A menu entry becomes the text of
// its label.
func componentEvent(i *discordgo.Interaction) (event.Event, error) {
	user, roles := interactionUser(i)
	if user == nil {
		return event.Event{}, fmt.Errorf("%w: interaction %s has no user", model.ErrInvalidInput, i.ID)
	}
	customID := i.MessageComponentData().CustomID
	action, err := event.Decode(customID)
	if err != nil {
		return event.Event{}, err
	}

	ev := event.Event{
		Kind:        event.Tap,
		UserID:      user.ID,
		DisplayName: displayName(user),
		Roles:       roles,
		Action:      action,
		Ref:         i.ID,
		ChannelID:   i.ChannelID,
	}
	if i.Message != nil {
		ev.MessageID = i.Message.ID
		ev.MessageText = i.Message.Content
		ev.Buttons = fromComponents(i.Message.Components)
	}

	if action.Kind == event.Menu {
		label, ok := labelOf(ev.Buttons, customID)
		if !ok {
			return event.Event{}, fmt.Errorf("%w: menu entry %q not on message", model.ErrInvalidInput, customID)
		}
		ev.Kind = event.Text
		ev.Text = label
		ev.Action = event.Action{}
	}
	return ev, nil
}
