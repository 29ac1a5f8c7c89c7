package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/ad/translit"
	"github.com/ad/translit/internal/logger"
	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
)

const ConfigFileName = "/data/options.json"

// Config is the add-on options file: the bot token and the default schema
// for chats that have not picked one.
type Config struct {
	Token  string `json:"TOKEN"`
	Schema string `json:"SCHEMA"`
}

func main() {
	log := logger.FromEnv()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("loading .env", "error", err)
	}

	config := &Config{Schema: "wikipedia"}
	var initFromFile = false

	if _, err := os.Stat(ConfigFileName); err == nil {
		jsonFile, err := os.Open(ConfigFileName)
		if err == nil {
			byteValue, _ := io.ReadAll(jsonFile)
			jsonFile.Close()

			if err = json.Unmarshal(byteValue, config); err != nil {
				log.Error("unmarshal config", "file", ConfigFileName, "error", err)
			} else {
				initFromFile = true
			}
		}
	}

	if !initFromFile {
		flag.StringVar(&config.Token, "TOKEN", lookupEnvOrString("TOKEN", config.Token), "telegram bot token")
		flag.StringVar(&config.Schema, "SCHEMA", lookupEnvOrString("SCHEMA", config.Schema), "default transliteration schema")
		flag.Parse()
	}

	if config.Token == "" {
		log.Error("TOKEN env var not set")
		os.Exit(1)
	}

	a, err := newApp(translit.Default(), config.Schema, log)
	if err != nil {
		log.Error("default schema", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithDefaultHandler(a.handler),
	}

	b, err := bot.New(config.Token, opts...)
	if err != nil {
		log.Error("creating bot", "error", err)
		os.Exit(1)
	}

	log.Info("bot started", "schema", config.Schema, "schemas", len(translit.Names()))

	b.Start(ctx)
}

func lookupEnvOrString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}
