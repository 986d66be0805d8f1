package def

import "github.com/bwmarrin/discordgo"

const (
	SearchName = "search"
	TopName    = "top"
	OptionName = "name"
)

var SearchCommand = &discordgo.ApplicationCommand{
	Name:         SearchName,
	Description:  "Search approved reviews by teacher name (members only)",
	DMPermission: &dmAllowed,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "搜索",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionName,
			Description: "Teacher name, e.g. Dr. Abebe",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "姓名",
			},
			Required: true,
		},
	},
}

var TopCommand = &discordgo.ApplicationCommand{
	Name:         TopName,
	Description:  "Show the best rated teachers and the toughest courses",
	DMPermission: &dmAllowed,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "排行榜",
	},
}
