package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Bot API token
	Token string
	// Chat that receives reminders and may run commands
	ChatID int64
	// Long polling timeout for updates, in seconds
	UpdateTimeout int
	// Time zone used when rendering dates
	Location *time.Location
}

// DefaultConfig returns the default bot configuration
func DefaultConfig(token string, chatID int64) *BotConfig {
	return &BotConfig{
		Token:         token,
		ChatID:        chatID,
		UpdateTimeout: 60,
		Location:      time.Local,
	}
}
