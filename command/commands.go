// Package command holds the slash commands registered with Discord.
package command

import (
	"github.com/GbredngleK/NG-Insider-Bot/command/def"
	"github.com/bwmarrin/discordgo"
)

// Command and option names as they arrive in interactions.
const (
	Start  = def.StartName
	Cancel = def.CancelName
	Search = def.SearchName
	Top    = def.TopName

	OptionToken = def.OptionToken
	OptionName  = def.OptionName
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.StartCommand,
	def.CancelCommand,
	def.SearchCommand,
	def.TopCommand,
}
