package session

import (
	"time"

	"github.com/dmitrijs2005/littlex/internal/client/models"
)

func warningNotice(at time.Time) models.Notice {
	return models.NewNotice(models.NoticeWarning, "Session expiring soon",
		"Extend your work by logging in again before the timeout.", at)
}

func expiredNotice(at time.Time) models.Notice {
	return models.NewNotice(models.NoticeExpired, "Session expired",
		"Please log in again to continue.", at)
}

func restoredExpiredNotice(at time.Time) models.Notice {
	return models.NewNotice(models.NoticeExpired, "Session expired",
		"You have been logged out for security reasons.", at)
}

func revokedNotice(at time.Time) models.Notice {
	return models.NewNotice(models.NoticeExpired, "Session expired",
		"Your session is no longer valid. Please log in again.", at)
}

func signedOutNotice(at time.Time) models.Notice {
	return models.NewNotice(models.NoticeSignedOut, "Signed out",
		"You have been logged out.", at)
}
