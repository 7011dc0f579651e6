package api

import "github.com/bwmarrin/discordgo"

// Module is a feature that can be attached to the bot session at startup.
type Module interface {
	Load(ds *discordgo.Session)
	Name() string
}
