package auth

import (
	"context"
	"log/slog"
)

// LogSender is the default Sender. It logs the code instead of delivering
// it; real SMS gateway credentials are deployment-specific.
type LogSender struct{}

// Send logs the code.
func (LogSender) Send(ctx context.Context, mobile, code string) error {
	slog.Info("otp code issued", "mobile", mobile, "code", code)
	return nil
}
