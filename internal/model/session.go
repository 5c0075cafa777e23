package model

import "time"

// Session binds a Telegram user to the account they signed in with.
type Session struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	ChatID     int64
	Account    int64
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Session) TableName() string { return "telegram_sessions" }
