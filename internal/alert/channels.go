package alert

import (
	"fmt"

	"github.com/jpalmerr/pulsecheck/config"
)

// SendersFromConfig builds a [Sender] for every channel enabled in cfg.
func SendersFromConfig(cfg config.AlertConfig) ([]Sender, error) {
	var senders []Sender

	if cfg.Email.Enabled() {
		s, err := NewEmailSender(cfg.Email.APIKey, cfg.Email.From, cfg.Email.To)
		if err != nil {
			return nil, fmt.Errorf("email channel: %w", err)
		}
		senders = append(senders, s)
	}

	if cfg.Telegram.Enabled() {
		s, err := NewTelegramSender(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram channel: %w", err)
		}
		senders = append(senders, s)
	}

	return senders, nil
}
