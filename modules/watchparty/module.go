package watchparty

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api"
	"github.com/chortlebot/chortle/api/database"
	"github.com/chortlebot/chortle/api/env"
	"github.com/chortlebot/chortle/api/logger"
	"github.com/spf13/viper"
)

type Module struct {
	api.Module
}

var appId string

func (*Module) Load(ds *discordgo.Session) {
	appId = viper.GetString("app.id")

	api.RegisterIntentNeed(discordgo.IntentsGuildMessages, discordgo.IntentsDirectMessages, discordgo.IntentMessageContent)

	var guilds []string
	for _, v := range env.GetStringArray("watchparty.guilds", ";") {
		if v == "" {
			continue
		}

		guilds = append(guilds, v)
	}

	db, err := database.Get()
	if err != nil {
		logger.Err().Println(err.Error())
		return
	}

	err = db.AutoMigrate(&Pool{}, &Submission{}, &SubmissionMessage{}, &Upvote{})
	if err != nil {
		logger.Err().Println(err.Error())
	}

	service := NewService(db)

	ds.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		for _, guild := range guilds {
			for _, v := range []*discordgo.ApplicationCommand{defineChannelOperation, submitOperation, startWatchPartyOperation, endCycleOperation} {
				logger.Out().Printf("Registering %s for guild %s\n", v.Name, guild)
				_, err := s.ApplicationCommandCreate(appId, guild, v)
				if err != nil {
					logger.Err().Printf("Cannot create slash command %q: %v", v.Name, err)
				}
			}
		}

		ids, err := service.SubmissionIds()
		if err != nil {
			logger.Err().Println(err.Error())
			return
		}
		logger.Out().Printf("Resuming vote buttons for %d pending submissions\n", len(ids))
	})

	ds.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			{
				switch i.ApplicationCommandData().Name {
				case defineChannelOperation.Name:
					runDefineChannel(s, i, service)
				case submitOperation.Name:
					runSubmit(s, i, service)
				case startWatchPartyOperation.Name:
					runStartWatchParty(s, i, service)
				case endCycleOperation.Name:
					runEndCycle(s, i, service)
				}
			}
		case discordgo.InteractionMessageComponent:
			{
				if _, ok := parseUpvoteCustomId(i.MessageComponentData().CustomID); ok {
					_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
						Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
						Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
					})

					runUpvote(s, i, service)
				}
			}
		}
	})

	ds.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
		onChannelMessage(s, mc, service)
	})
}

func deferEphemeral(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = ds.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func respondText(ds *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_, _ = ds.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg})
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func interactionUserId(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (Module) Name() string {
	return "watchparty"
}
