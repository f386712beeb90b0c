package models

import "time"

// SessionMode is the conversation phase of a user with a live session.
type SessionMode string

const (
	SessionModeAwaitingChoice SessionMode = "awaiting_choice"
	SessionModeQA             SessionMode = "qa"
)

// Session bridges a successful search to the follow-up conversation.
type Session struct {
	UserID      string      `json:"user_id"`
	Mode        SessionMode `json:"mode"`
	DocumentIDs []string    `json:"document_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
