package main

import (
	"log"
	"os"

	"futures-testnet-bot/internal/cli"
	"futures-testnet-bot/internal/config"
	"futures-testnet-bot/internal/logger"
)

func main() {
	level, dir := config.LogSettings()
	if err := logger.Init(logger.Options{Dir: dir, ConsoleLevel: logger.ParseLevel(level)}); err != nil {
		log.Printf("File logging disabled: %v", err)
		if err := logger.Init(logger.Options{ConsoleLevel: logger.ParseLevel(level)}); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	os.Exit(cli.NewApp().Run(os.Args[1:]))
}
