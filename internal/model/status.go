package model

import "time"

// BotStatusID is the fixed id of the single bot status row.
const BotStatusID = "bot"

// DemoPhoneNumber is reported by the simulated connect transition.
const DemoPhoneNumber = "+1234567890"

// BotStatus describes the simulated connection state of the bot.
type BotStatus struct {
	ID              string    `json:"id"`
	IsConnected     bool      `json:"is_connected"`
	PhoneNumber     *string   `json:"phone_number"`
	QRCode          *string   `json:"qr_code"`
	LastSeen        time.Time `json:"last_seen"`
	SessionRestored bool      `json:"session_restored"`
}

// DefaultBotStatus returns the status persisted on first read.
func DefaultBotStatus(now time.Time) BotStatus {
	return BotStatus{
		ID:       BotStatusID,
		LastSeen: now,
	}
}
