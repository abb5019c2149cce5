package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ActivationNotification struct {
	UserID    uuid.UUID
	Email     string
	Code      string
	ExpiresAt time.Time
}

// ActivationNotifier delivers a freshly issued activation code to the
// account owner out of band.
type ActivationNotifier interface {
	SendActivationCode(ctx context.Context, notification ActivationNotification) error
}

// DevActivationNotifier logs the code instead of sending it. Only
// suitable for local development.
type DevActivationNotifier struct {
	logger *slog.Logger
}

func NewDevActivationNotifier(logger *slog.Logger) *DevActivationNotifier {
	return &DevActivationNotifier{logger: logger}
}

func (n *DevActivationNotifier) SendActivationCode(ctx context.Context, notification ActivationNotification) error {
	n.logger.InfoContext(ctx, "activation code issued",
		"user_id", notification.UserID,
		"email", notification.Email,
		"code", notification.Code,
		"expires_at", notification.ExpiresAt,
	)
	return nil
}
