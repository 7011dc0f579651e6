package watchparty

import (
	"errors"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api/logger"
)

func runUpvote(ds *discordgo.Session, i *discordgo.InteractionCreate, service *Service) {
	submissionId, ok := parseUpvoteCustomId(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	userId := interactionUserId(i)

	err := castVote(service, submissionId, userId)
	if errors.Is(err, ErrSubmissionNotFound) {
		respondText(ds, i, "This message is no longer available.")
		return
	}
	if err != nil {
		logger.Err().Println(err.Error())
		respondText(ds, i, "Vote failed to be cast...")
		return
	}

	count, err := service.UpvoteCount(submissionId)
	if err != nil {
		logger.Err().Println(err.Error())
	} else {
		refreshVoteCount(ds, i.ChannelID, submissionId, count, service)
		logger.Out().Printf("User %s upvoted submission %d - %d upvotes\n", userId, submissionId, count)
	}

	respondText(ds, i, "Upvote submitted.")
}

// castVote guards the insert with an existence check. A button can outlive
// its submission when a cycle ends between the reveal and the click; stale
// clicks surface as ErrSubmissionNotFound instead of a storage error.
func castVote(service *Service, submissionId uint, userId string) error {
	exists, err := service.SubmissionExists(submissionId)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSubmissionNotFound
	}

	return service.Upvote(submissionId, userId)
}

// refreshVoteCount rewrites the revealed message's embed so the displayed
// count tracks the vote table. The embed is rebuilt from the stored
// submission, not scraped back out of the posted message.
func refreshVoteCount(ds *discordgo.Session, channelId string, submissionId uint, count int64, service *Service) {
	submission, err := service.LookupSubmission(submissionId)
	if err != nil {
		if !errors.Is(err, ErrSubmissionNotFound) {
			logger.Err().Println(err.Error())
		}
		return
	}

	messageId, err := service.MessageId(submissionId)
	if err != nil {
		if !errors.Is(err, ErrMessageLinkMissing) {
			logger.Err().Println(err.Error())
		}
		return
	}

	embeds := []*discordgo.MessageEmbed{submissionEmbed(submission.Text, count)}
	edit := discordgo.NewMessageEdit(channelId, messageId)
	edit.Embeds = &embeds

	_, _ = ds.ChannelMessageEditComplex(edit)
}
