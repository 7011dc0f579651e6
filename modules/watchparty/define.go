package watchparty

import (
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api/logger"
)

var defineChannelOperation = &discordgo.ApplicationCommand{
	Name:        "define-tntl-channel",
	Description: "Define this channel for Try Not To Laugh.",
	Type:        discordgo.ChatApplicationCommand,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        "max-submissions",
			Description: "How many submissions each user gets per cycle",
			Type:        discordgo.ApplicationCommandOptionInteger,
			Required:    true,
		},
	},
}

func runDefineChannel(ds *discordgo.Session, i *discordgo.InteractionCreate, service *Service) {
	deferEphemeral(ds, i)

	if !isAdmin(i) {
		respondText(ds, i, "You must be an administrator to define a Try Not To Laugh channel.")
		return
	}

	maxSubmissions := int(i.ApplicationCommandData().Options[0].IntValue())
	if maxSubmissions < 1 {
		respondText(ds, i, "Max submissions must be at least 1.")
		return
	}

	_, err := service.LookupPool(i.ChannelID)
	if err == nil {
		logger.Out().Printf("Attempted to redefine existing TNTL channel %s\n", i.ChannelID)
		respondText(ds, i, "Try Not To Laugh channel already defined.")
		return
	}
	if !errors.Is(err, ErrChannelNotConfigured) {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error talking to the database, try again later.")
		return
	}

	_, err = service.DefinePool(i.ChannelID, maxSubmissions)
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error saving channel to the database.")
		return
	}

	logger.Out().Printf("New TNTL channel defined: %s with %d max submissions\n", i.ChannelID, maxSubmissions)
	respondText(ds, i, fmt.Sprintf("Try Not To Laugh channel defined to <#%s> with %d submissions per user.", i.ChannelID, maxSubmissions))
}
