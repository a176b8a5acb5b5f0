// Package notifications is the best-effort sink informed after ledger events.
// Deliveries never participate in the ledger transaction: failures are logged
// and dropped.
package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier delivers user-facing notifications for ledger events. Nil-safe
// no-op when unconfigured; tests substitute a Recorder.
type Notifier interface {
	NotifyKycChanged(ctx context.Context, toEmail, fullname, status string) error
	NotifyAccountFrozen(ctx context.Context, toEmail, fullname string, frozen bool) error
	NotifyTokensRevoked(ctx context.Context, toEmail, assetTitle string, amount int64) error
	NotifyOrderFilled(ctx context.Context, toEmail, assetTitle string, amount int64, price string) error
}

// Dispatch runs fn on a fresh goroutine with its own timeout so a slow or
// failing sink never blocks or rolls back the calling transaction.
func Dispatch(event string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("event", event).Msg("Notification delivery failed")
		}
	}()
}

// Recorder records notifications for tests.
type Recorder struct {
	Events []RecordedEvent
}

type RecordedEvent struct {
	Kind    string
	ToEmail string
	Detail  string
}

func (r *Recorder) NotifyKycChanged(ctx context.Context, toEmail, fullname, status string) error {
	r.Events = append(r.Events, RecordedEvent{Kind: "kyc_changed", ToEmail: toEmail, Detail: status})
	return nil
}

func (r *Recorder) NotifyAccountFrozen(ctx context.Context, toEmail, fullname string, frozen bool) error {
	detail := "frozen"
	if !frozen {
		detail = "unfrozen"
	}
	r.Events = append(r.Events, RecordedEvent{Kind: "account_frozen", ToEmail: toEmail, Detail: detail})
	return nil
}

func (r *Recorder) NotifyTokensRevoked(ctx context.Context, toEmail, assetTitle string, amount int64) error {
	r.Events = append(r.Events, RecordedEvent{Kind: "tokens_revoked", ToEmail: toEmail, Detail: assetTitle})
	return nil
}

func (r *Recorder) NotifyOrderFilled(ctx context.Context, toEmail, assetTitle string, amount int64, price string) error {
	r.Events = append(r.Events, RecordedEvent{Kind: "order_filled", ToEmail: toEmail, Detail: assetTitle})
	return nil
}
