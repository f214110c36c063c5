package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Language string `env:"WIDGET_LANGUAGE" envDefault:"it"`
	Position string `env:"WIDGET_POSITION" envDefault:"bottom-right"`
	Theme    string `env:"WIDGET_THEME" envDefault:"classic"`

	// API access
	ClientID   string `env:"WIDGET_CLIENT_ID" envDefault:"89b90056-4cc4-054a-a3db-9a3c0ded7efc"`
	APIBaseURL string `env:"WIDGET_API_BASE_URL,required"`

	// Presentation
	WelcomeMessage   string `env:"WIDGET_WELCOME_MESSAGE"`
	AssistantName    string `env:"WIDGET_ASSISTANT_NAME"`
	ShowQuickActions bool   `env:"WIDGET_SHOW_QUICK_ACTIONS" envDefault:"true"`

	// Host container for embedded mode; empty means floating mode.
	ContainerID string `env:"WIDGET_CONTAINER_ID"`

	// Storage
	ThemeFilePath string `env:"WIDGET_THEME_FILE_PATH" envDefault:"data/theme.json"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
