package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"northstar/internal/advisor"
	"northstar/internal/api"
	"northstar/internal/auth"
	"northstar/internal/config"
	"northstar/internal/scheduler"
	"northstar/internal/session"
	"northstar/internal/telegram"
	"northstar/internal/transcript"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	authSvc := auth.NewService(cfg.AllowedUsers)

	creds, err := auth.NewCredentialStore(cfg.TokenFilePath, cfg.APIToken)
	if err != nil {
		log.Fatalf("failed to init credential store: %v", err)
	}

	client := api.New(cfg.APIBaseURL, creds)

	var rec transcript.Recorder
	if cfg.TranscriptPath != "" {
		fr, err := transcript.NewFileRecorder(cfg.TranscriptPath)
		if err != nil {
			log.Printf("failed to init transcript recorder: %v", err)
		} else {
			rec = fr
		}
	}

	factory := func(chatID int64) (*telegram.Surface, error) {
		slot, err := session.NewFileSlot(filepath.Join(cfg.DataDir, fmt.Sprintf("conversation_%d.txt", chatID)))
		if err != nil {
			return nil, err
		}
		sess := session.NewManager(client, slot)
		_, haveCred := creds.Token()
		ob := advisor.NewOnboarding(client, haveCred)
		if haveCred {
			// A pre-configured credential means an established account;
			// the goal-setting interview only runs for fresh installs.
			ob.Skip()
		}
		return &telegram.Surface{
			Orch:       advisor.New(client, sess, cfg.AdviceType),
			Onboarding: ob,
		}, nil
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		authSvc,
		client,
		creds,
		rec,
		cfg.MessageParseMode,
		factory,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.BriefingCron)
	sched.SetBriefingFunc(bot.PushBriefing)
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(context.Background())
}
