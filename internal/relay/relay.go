// Package relay forwards accepted leads to downstream consumers (sales inbox
// email, CRM webhook). Delivery is strictly best-effort: by the time a relay
// runs the caller has already been told their submission succeeded, so relay
// failures are logged and counted but never surface to the user.
package relay

import (
	"context"
	"sync"
	"time"

	"github.com/trimwise/trimwise-api/internal/models"
	"github.com/trimwise/trimwise-api/pkg/logger"
	"github.com/trimwise/trimwise-api/pkg/metrics"
	"go.uber.org/zap"
)

// Relay delivers one accepted lead to a downstream consumer.
type Relay interface {
	Name() string
	Deliver(ctx context.Context, lead models.LeadSubmission, bill *models.Attachment, referenceID string) error
}

// Dispatcher fans an accepted lead out to every configured relay without
// making the HTTP caller wait. Outcomes are logged and counted only.
type Dispatcher struct {
	relays  []Relay
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a per-delivery timeout.
func NewDispatcher(timeout time.Duration, relays ...Relay) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{relays: relays, timeout: timeout}
}

// Dispatch starts asynchronous delivery to all relays and returns
// immediately.
func (d *Dispatcher) Dispatch(lead models.LeadSubmission, bill *models.Attachment, referenceID string) {
	for _, r := range d.relays {
		d.wg.Add(1)
		go func(r Relay) {
			defer d.wg.Done()
			d.deliver(r, lead, bill, referenceID)
		}(r)
	}
}

func (d *Dispatcher) deliver(r Relay, lead models.LeadSubmission, bill *models.Attachment, referenceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := r.Deliver(ctx, lead, bill, referenceID)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.RelayDeliveries.WithLabelValues(r.Name(), "error").Inc()
		metrics.RelayDeliveryDuration.WithLabelValues(r.Name(), "error").Observe(duration)
		logger.Error("Lead relay delivery failed",
			zap.Error(err),
			zap.String("relay", r.Name()),
			zap.String("reference_id", referenceID))
		return
	}

	metrics.RelayDeliveries.WithLabelValues(r.Name(), "success").Inc()
	metrics.RelayDeliveryDuration.WithLabelValues(r.Name(), "success").Observe(duration)
	logger.Info("Lead relayed",
		zap.String("relay", r.Name()),
		zap.String("reference_id", referenceID))
}

// Wait blocks until in-flight deliveries finish or ctx expires. Used during
// graceful shutdown so accepted leads are not dropped on deploy.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogRelay records accepted leads in the application log. It is the fallback
// when neither email nor webhook delivery is configured, so leads remain
// recoverable from logs in minimal deployments.
type LogRelay struct{}

// Name implements Relay.
func (LogRelay) Name() string { return "log" }

// Deliver implements Relay.
func (LogRelay) Deliver(_ context.Context, lead models.LeadSubmission, bill *models.Attachment, referenceID string) error {
	fields := []zap.Field{
		zap.String("reference_id", referenceID),
		zap.String("full_name", lead.FullName),
		zap.String("email", lead.Email),
		zap.String("phone", lead.Phone),
		zap.String("state", lead.State),
		zap.String("zip_code", lead.ZipCode),
		zap.String("bill_category", lead.BillCategory),
		zap.String("provider", lead.Provider),
		zap.Float64("monthly_amount", lead.MonthlyAmount),
	}
	if bill != nil {
		fields = append(fields,
			zap.String("bill_file", bill.FileName),
			zap.Int64("bill_size", bill.Size))
	}
	logger.Info("Lead accepted (log relay)", fields...)
	return nil
}
