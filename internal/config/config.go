package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`

	// Advisor API
	APIBaseURL string `env:"ADVISOR_API_URL" envDefault:"http://localhost:8000"`
	APIToken   string `env:"ADVISOR_API_TOKEN"`
	AdviceType string `env:"ADVICE_TYPE" envDefault:"general"`

	// Client-local state
	DataDir        string `env:"DATA_DIR" envDefault:"data"`
	TokenFilePath  string `env:"TOKEN_FILE_PATH" envDefault:"data/token.txt"`
	TranscriptPath string `env:"TRANSCRIPT_PATH" envDefault:"logs/transcript.jsonl"`

	// Morning briefing push, cron spec in UTC. Empty disables the push.
	BriefingCron string `env:"BRIEFING_CRON" envDefault:"0 8 * * *"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"Markdown"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
