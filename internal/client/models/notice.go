package models

import (
	"time"

	"github.com/google/uuid"
)

// NoticeKind classifies a user-visible session notice.
type NoticeKind string

const (
	NoticeWarning   NoticeKind = "warning"
	NoticeExpired   NoticeKind = "expired"
	NoticeSignedOut NoticeKind = "signed_out"
)

// Notice is a non-blocking message for the UI (toast, banner, CLI line).
type Notice struct {
	ID      uuid.UUID  `json:"id"`
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// NewNotice stamps a notice with a fresh ID and the given time.
func NewNotice(kind NoticeKind, title, message string, at time.Time) Notice {
	return Notice{ID: uuid.New(), Kind: kind, Title: title, Message: message, At: at}
}
