package main

import (
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/chortlebot/chortle/api"
	"github.com/chortlebot/chortle/api/database"
	"github.com/chortlebot/chortle/api/logger"
	"github.com/chortlebot/chortle/modules"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var Session *discordgo.Session

func main() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	moduleNames := os.Args[1:]

	token := viper.GetString("discord_token")

	if token == "" {
		logger.Err().Print("DISCORD_TOKEN must be set in the environment to run this process")
		return
	}

	defer func() {
		err := logger.Close()
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error closing logger: %s", err.Error())
		}
	}()

	defer database.Close()

	var err error
	Session, err = newSession(token)
	if err != nil {
		logger.Err().Print(err.Error())
		return
	}
	defer Session.Close()

	if len(moduleNames) > 0 {
		modules.Load(Session, moduleNames)
	}

	OpenConnection()

	// Wait for a CTRL-C
	fmt.Println(`Now running. Press CTRL-C to exit.`)
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt, os.Kill)
	<-sc
	fmt.Println("Shutting down")
}

func newSession(token string) (*discordgo.Session, error) {
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	return discordgo.New(token)
}

func OpenConnection() {
	Session.Identify.Intents = api.GetIntent()

	EnableCommands(Session)

	err := Session.Open()
	if err != nil {
		logger.Err().Print(err.Error())
		os.Exit(1)
	}
}
