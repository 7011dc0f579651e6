package watchparty

import (
	"errors"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api/logger"
)

var submitOperation = &discordgo.ApplicationCommand{
	Name:        "submit-tntl-message",
	Description: "Submit a message to Try Not To Laugh.",
	Type:        discordgo.ChatApplicationCommand,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        "url",
			Description: "Link to submit",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
		},
	},
}

const submittedReply = "Your message has been submitted. It will be posted to the channel when the watch party starts."
const notTntlChannelReply = "This is not a Try Not To Laugh channel."
const limitReachedReply = "You have already submitted the maximum number of messages for this channel."

func runSubmit(ds *discordgo.Session, i *discordgo.InteractionCreate, service *Service) {
	deferEphemeral(ds, i)

	url := i.ApplicationCommandData().Options[0].StringValue()

	err := processSubmission(service, url, i.ChannelID, interactionUserId(i))
	switch {
	case err == nil:
		respondText(ds, i, submittedReply)
	case errors.Is(err, ErrChannelNotConfigured):
		logger.Out().Printf("Attempted to submit message to non-TNTL channel %s\n", i.ChannelID)
		respondText(ds, i, notTntlChannelReply)
	case errors.Is(err, ErrSubmissionLimit):
		respondText(ds, i, limitReachedReply)
	default:
		logger.Err().Println(err.Error())
		respondText(ds, i, "Error saving submission, try again later.")
	}
}

// processSubmission is the check-then-insert path shared by the slash command
// and the plain-message path. The quota check and the insert are two store
// round trips; see Service.CanSubmit for the race this leaves open.
func processSubmission(service *Service, url string, channelId string, submitterId string) error {
	pool, err := service.LookupPool(channelId)
	if err != nil {
		return err
	}

	ok, err := service.CanSubmit(pool.ID, submitterId)
	if err != nil {
		return err
	}
	if !ok {
		logger.Out().Printf("User %s exceeded submission limit in channel %s\n", submitterId, channelId)
		return ErrSubmissionLimit
	}

	id, err := service.Submit(url, pool.ID, submitterId)
	if err != nil {
		return err
	}

	logger.Out().Printf("New TNTL message %d submitted by user %s\n", id, submitterId)
	return nil
}

// onChannelMessage treats any plain message in a pool channel as a
// submission: the message is removed so the pool stays secret until the
// reveal, and the outcome goes to the author as a DM.
func onChannelMessage(ds *discordgo.Session, mc *discordgo.MessageCreate, service *Service) {
	if mc.Author == nil || mc.Author.Bot || mc.Author.ID == ds.State.User.ID {
		return
	}

	var reply string
	err := processSubmission(service, mc.Content, mc.ChannelID, mc.Author.ID)
	switch {
	case errors.Is(err, ErrChannelNotConfigured):
		// not a pool channel, leave the message alone
		return
	case err == nil:
		reply = submittedReply
	case errors.Is(err, ErrSubmissionLimit):
		reply = limitReachedReply
	default:
		logger.Err().Println(err.Error())
		reply = "Error saving submission, try again later."
	}

	dm, err := ds.UserChannelCreate(mc.Author.ID)
	if err == nil {
		_, _ = ds.ChannelMessageSend(dm.ID, reply)
	}

	_ = ds.ChannelMessageDelete(mc.ChannelID, mc.ID)
}
