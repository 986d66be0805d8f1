package bot

import (
	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/bwmarrin/discordgo"
)

// Discord 组件限制
const (
	maxRowButtons = 5
	maxRows       = 5
	maxLabelLen   = 80
	maxContentLen = 2000
)

// keyboard merges inline buttons and menu entries into rows Discord accepts.
func keyboard(msg model.Outgoing) [][]model.Button {
	rows := make([][]model.Button, 0, len(msg.Buttons)+1)
	rows = append(rows, msg.Buttons...)

	var menu []model.Button
	for i, label := range msg.Menu {
		menu = append(menu, model.Button{Label: label, Data: event.Action{Kind: event.Menu, Index: i}.Encode()})
	}
	rows = append(rows, chunk(menu)...)
	return pack(rows)
}

func chunk(buttons []model.Button) [][]model.Button {
	var rows [][]model.Button
	for len(buttons) > 0 {
		n := min(maxRowButtons, len(buttons))
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return rows
}

// pack keeps the given layout when it fits and otherwise reflows every
// button into full rows, dropping what exceeds the component limit.
func pack(rows [][]model.Button) [][]model.Button {
	var split [][]model.Button
	for _, row := range rows {
		split = append(split, chunk(row)...)
	}
	if len(split) <= maxRows {
		return split
	}

	var flat []model.Button
	for _, row := range split {
		flat = append(flat, row...)
	}
	if len(flat) > maxRows*maxRowButtons {
		flat = flat[:maxRows*maxRowButtons]
	}
	return chunk(flat)
}

func buttonStyle(b model.Button) (discordgo.ButtonStyle, bool) {
	if b.URL != "" {
		return discordgo.LinkButton, false
	}
	a, err := event.Decode(b.Data)
	if err != nil {
		return discordgo.SecondaryButton, false
	}
	switch a.Kind {
	case event.ModApprove, event.DraftSubmit:
		return discordgo.SuccessButton, false
	case event.ModReject, event.ModBan, event.CancelFlow, event.DraftDelete:
		return discordgo.DangerButton, false
	case event.SubjectPageNoop:
		return discordgo.SecondaryButton, true
	case event.Menu, event.SubjectPage, event.ModBack:
		return discordgo.SecondaryButton, false
	}
	return discordgo.PrimaryButton, false
}

// toComponents 将按钮行转换为 Discord 组件
func toComponents(rows [][]model.Button) []discordgo.MessageComponent {
	components := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := discordgo.ActionsRow{}
		for _, b := range row {
			style, disabled := buttonStyle(b)
			btn := discordgo.Button{
				Label:    utils.Truncate(b.Label, maxLabelLen-1),
				Style:    style,
				Disabled: disabled,
			}
			if b.URL != "" {
				btn.URL = b.URL
			} else {
				btn.CustomID = b.Data
			}
			r.Components = append(r.Components, btn)
		}
		components = append(components, r)
	}
	return components
}

// fromComponents reads the buttons of a received message back into rows.
func fromComponents(components []discordgo.MessageComponent) [][]model.Button {
	var rows [][]model.Button
	for _, comp := range components {
		var row *discordgo.ActionsRow
		switch c := comp.(type) {
		case *discordgo.ActionsRow:
			row = c
		case discordgo.ActionsRow:
			row = &c
		default:
			continue
		}

		var buttons []model.Button
		for _, inner := range row.Components {
			var btn *discordgo.Button
			switch b := inner.(type) {
			case *discordgo.Button:
				btn = b
			case discordgo.Button:
				btn = &b
			default:
				continue
			}
			buttons = append(buttons, model.Button{Label: btn.Label, Data: btn.CustomID, URL: btn.URL})
		}
		rows = append(rows, buttons)
	}
	return rows
}

// labelOf finds the label of the button carrying customID.
func labelOf(rows [][]model.Button, customID string) (string, bool) {
	for _, row := range rows {
		for _, b := range row {
			if b.Data == customID {
				return b.Label, true
			}
		}
	}
	return "", false
}

func fitContent(s string) string {
	return utils.Truncate(s, maxContentLen-1)
}
