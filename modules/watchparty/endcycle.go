package watchparty

import (
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api/logger"
	"github.com/dustin/go-humanize"
)

var endCycleOperation = &discordgo.ApplicationCommand{
	Name:        "end-tntl-cycle",
	Description: "End the Try Not To Laugh cycle.",
	Type:        discordgo.ChatApplicationCommand,
}

func runEndCycle(ds *discordgo.Session, i *discordgo.InteractionCreate, service *Service) {
	deferEphemeral(ds, i)

	if !isAdmin(i) {
		respondText(ds, i, "You must be an administrator to end the cycle.")
		return
	}

	pool, err := service.LookupPool(i.ChannelID)
	if err != nil {
		if errors.Is(err, ErrChannelNotConfigured) {
			logger.Out().Printf("Attempted to end TNTL cycle in non-TNTL channel %s\n", i.ChannelID)
			respondText(ds, i, notTntlChannelReply)
		} else {
			logger.Err().Println(err.Error())
			respondText(ds, i, "Error talking to the database, try again later.")
		}
		return
	}

	logger.Out().Printf("Ending TNTL cycle in channel %s\n", i.ChannelID)

	ranked, err := service.TopSubmissions(pool.ID, 10)
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error reading leaderboard, try again later.")
		return
	}

	msg := "Here are the top upvoted messages:\n"
	for k, v := range ranked {
		msg += fmt.Sprintf("%s: %s - %d upvotes - <@%s>\n", humanize.Ordinal(k+1), v.Text, v.UpvoteCount, v.SubmitterId)
	}
	_, _ = ds.ChannelMessageSend(i.ChannelID, msg)

	voters, err := service.TopVoters(pool.ID, 10)
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error reading leaderboard, try again later.")
		return
	}

	msg = "Here are the top voters:\n"
	for k, v := range voters {
		msg += fmt.Sprintf("%s: <@%s>\n", humanize.Ordinal(k+1), v)
	}
	_, _ = ds.ChannelMessageSend(i.ChannelID, msg)

	err = service.EndCycle(pool.ID)
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error clearing the pool, try again later.")
		return
	}

	logger.Out().Printf("TNTL cycle ended in channel %s\n", i.ChannelID)
	respondText(ds, i, "Try Not To Laugh cycle ended.")
}
