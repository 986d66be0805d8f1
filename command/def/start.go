package def

import "github.com/bwmarrin/discordgo"

const (
	StartName   = "start"
	CancelName  = "cancel"
	OptionToken = "token"
)

var dmAllowed = true

var StartCommand = &discordgo.ApplicationCommand{
	Name:         StartName,
	Description:  "Write an anonymous review of a teacher",
	DMPermission: &dmAllowed,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "开始",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionToken,
			Description: "Follow-up code from a published review (add_...)",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "追评码",
			},
			Required: false,
		},
	},
}

var CancelCommand = &discordgo.ApplicationCommand{
	Name:         CancelName,
	Description:  "Cancel the review you are writing",
	DMPermission: &dmAllowed,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "取消",
	},
}
