package auctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/commission"
	"auction-house/internal/domain/media"
	"auction-house/internal/domain/triage"
	"auction-house/internal/infra/events"

	"gorm.io/gorm"
)

// Options carries the policies and collaborators shared by the auction and
// lot managers. Zero values fall back to the house defaults.
type Options struct {
	Commission commission.Policy
	Withdrawal commission.WithdrawalPolicy
	Triage     triage.Policy
	Events     events.Publisher
	Store      media.Store
	Clock      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Commission.BuyersPremiumRate.IsZero() && o.Commission.SellersCommissionRate.IsZero() {
		o.Commission = commission.DefaultPolicy()
	}
	if o.Withdrawal.Rate.IsZero() && o.Withdrawal.WindowDays == 0 {
		o.Withdrawal = commission.DefaultWithdrawalPolicy()
	}
	if o.Triage.Threshold.IsZero() {
		o.Triage = triage.DefaultPolicy()
	}
	if o.Events == nil {
		o.Events = events.Noop{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// publish runs after a transition has committed, so a broker failure is
// logged instead of failing a write that already happened.
func publish(ctx context.Context, p events.Publisher, subject string, payload any) {
	if err := p.Publish(ctx, subject, payload); err != nil {
		slog.Warn("event publish failed", slog.String("subject", subject), slog.Any("error", err))
	}
}

func notFoundOr(err error, msg string, wrap string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return fmt.Errorf(wrap+": %w", append(args, err)...)
}
