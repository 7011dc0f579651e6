package ping

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api"
	"github.com/chortlebot/chortle/api/env"
	"github.com/chortlebot/chortle/api/logger"
	"github.com/spf13/viper"
)

type Module struct {
	api.Module
}

var appId string

var pingOperation = &discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Ping the bot",
	Type:        discordgo.ChatApplicationCommand,
}

func (*Module) Load(ds *discordgo.Session) {
	appId = viper.GetString("app.id")

	var guilds []string
	for _, v := range env.GetStringArray("ping.guilds", ";") {
		if v == "" {
			continue
		}

		guilds = append(guilds, v)
	}

	ds.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		for _, guild := range guilds {
			logger.Out().Printf("Registering %s for guild %s\n", pingOperation.Name, guild)
			_, err := s.ApplicationCommandCreate(appId, guild, pingOperation)
			if err != nil {
				logger.Err().Printf("Cannot create slash command %q: %v", pingOperation.Name, err)
			}
		}
	})

	ds.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if i.ApplicationCommandData().Name != pingOperation.Name {
			return
		}

		_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "Pong!",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	})
}

func (Module) Name() string {
	return "ping"
}
