package notification

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// KindOTP indicates a one-time-code delivery.
	KindOTP = "otp"
	// KindPasswordReset indicates a password-reset link delivery.
	KindPasswordReset = "password_reset"
)

// Message describes an outbound notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems. Delivery is
// fire-and-forget from the caller's perspective; a returned error surfaces to
// the requester but leaves already-written credential state in place.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// OTPMessage renders the one-time-code mail for a destination.
func OTPMessage(destination, code string) Message {
	return Message{
		Kind:        KindOTP,
		Destination: destination,
		Subject:     "Your OTP Code - Ordoo",
		Body:        fmt.Sprintf("Your One-Time Password (OTP) for login is %s. This OTP will expire in 10 minutes. If you didn't request this, please ignore this email.", code),
	}
}

// PasswordResetMessage renders the reset-link mail. frontendURL is the base
// the reset form is served from.
func PasswordResetMessage(destination, frontendURL, resetToken string) Message {
	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", frontendURL, resetToken)
	return Message{
		Kind:        KindPasswordReset,
		Destination: destination,
		Subject:     "Password Reset - Ordoo",
		Body:        fmt.Sprintf("You requested a password reset for your Ordoo account. Open %s to choose a new password. This link will expire in 1 hour. If you didn't request this, please ignore this email.", resetURL),
	}
}

// LoggerNotifier is a stub implementation that writes notifications to the
// logger. Codes and tokens are deliberately not logged.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message metadata to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"subject", message.Subject,
	)
	return nil
}
