package watchparty

import (
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api/logger"
	"strconv"
)

var startWatchPartyOperation = &discordgo.ApplicationCommand{
	Name:        "start-tntl-watch-party",
	Description: "Start the Try Not To Laugh watch party.",
	Type:        discordgo.ChatApplicationCommand,
}

func runStartWatchParty(ds *discordgo.Session, i *discordgo.InteractionCreate, service *Service) {
	deferEphemeral(ds, i)

	if !isAdmin(i) {
		respondText(ds, i, "You must be an administrator to start the watch party.")
		return
	}

	pool, err := service.LookupPool(i.ChannelID)
	if err != nil {
		if errors.Is(err, ErrChannelNotConfigured) {
			logger.Out().Printf("Attempted to start TNTL watch party in non-TNTL channel %s\n", i.ChannelID)
			respondText(ds, i, notTntlChannelReply)
		} else {
			logger.Err().Println(err.Error())
			respondText(ds, i, "Error talking to the database, try again later.")
		}
		return
	}

	submissions, err := service.Submissions(pool.ID)
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error reading submissions, try again later.")
		return
	}

	logger.Out().Printf("Starting TNTL watch party in channel %s with %d submissions\n", i.ChannelID, len(submissions))

	for _, submission := range submissions {
		m := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{submissionEmbed(submission.Text, 0)},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{discordgo.Button{
						CustomID: upvoteCustomId(submission.ID),
						Style:    discordgo.SuccessButton,
						Label:    "Upvote",
					}},
				},
			},
		}

		message, err := ds.ChannelMessageSendComplex(i.ChannelID, m)
		if err != nil {
			logger.Err().Printf("Failed to post submission %d: %s\n", submission.ID, err.Error())
			continue
		}

		err = service.LinkMessage(submission.ID, message.ID)
		if err != nil {
			logger.Err().Printf("Failed to link submission %d to message %s: %s\n", submission.ID, message.ID, err.Error())
		}
	}

	respondText(ds, i, fmt.Sprintf("Try Not To Laugh watch party started with %d submissions.", len(submissions)))
}

func submissionEmbed(url string, upvotes int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "URL", Value: url, Inline: false},
			{Name: "Upvotes", Value: strconv.FormatInt(upvotes, 10), Inline: true},
		},
	}
}
