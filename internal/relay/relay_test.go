package relay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trimwise/trimwise-api/internal/models"
)

type countingRelay struct {
	name  string
	err   error
	calls int32
}

func (r *countingRelay) Name() string { return r.name }

func (r *countingRelay) Deliver(context.Context, models.LeadSubmission, *models.Attachment, string) error {
	atomic.AddInt32(&r.calls, 1)
	return r.err
}

func TestDispatcher_FansOutToAllRelays(t *testing.T) {
	first := &countingRelay{name: "first"}
	second := &countingRelay{name: "second"}
	d := NewDispatcher(time.Second, first, second)

	d.Dispatch(relayLead(), nil, "TRW-TEST-0001")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, d.Wait(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&first.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.calls))
}

func TestDispatcher_FailureDoesNotStopOtherRelays(t *testing.T) {
	failing := &countingRelay{name: "failing", err: errors.New("downstream unavailable")}
	healthy := &countingRelay{name: "healthy"}
	d := NewDispatcher(time.Second, failing, healthy)

	// Dispatch never surfaces delivery outcomes to the caller.
	d.Dispatch(relayLead(), nil, "TRW-TEST-0002")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, d.Wait(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failing.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&healthy.calls))
}

func TestDispatcher_WaitHonorsContext(t *testing.T) {
	slow := &countingRelay{name: "slow"}
	d := NewDispatcher(time.Minute, relayFunc(func(ctx context.Context) error {
		atomic.AddInt32(&slow.calls, 1)
		<-ctx.Done()
		return ctx.Err()
	}))

	d.Dispatch(relayLead(), nil, "TRW-TEST-0003")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}

// relayFunc adapts a function to the Relay interface for tests.
type relayFunc func(ctx context.Context) error

func (relayFunc) Name() string { return "func" }

func (f relayFunc) Deliver(ctx context.Context, _ models.LeadSubmission, _ *models.Attachment, _ string) error {
	return f(ctx)
}

func TestLogRelay_NeverFails(t *testing.T) {
	bill := &models.Attachment{FileName: "bill.pdf", ContentType: "application/pdf", Size: 13}
	assert.NoError(t, LogRelay{}.Deliver(context.Background(), relayLead(), bill, "TRW-TEST-0004"))
	assert.NoError(t, LogRelay{}.Deliver(context.Background(), relayLead(), nil, "TRW-TEST-0005"))
}

func TestBuildEmailSubject(t *testing.T) {
	subject := buildEmailSubject(relayLead())
	assert.Equal(t, "New lead: Jane Doe (internet, $120.00/mo)", subject)
}

func TestBuildEmailBody(t *testing.T) {
	bill := &models.Attachment{
		FileName:    "bill.pdf",
		ContentType: "application/pdf",
		Size:        13,
		ArchiveURL:  "https://archive.example/bill.pdf",
	}
	body := buildEmailBody(relayLead(), bill, "TRW-TEST-0006")

	assert.Contains(t, body, "Reference: TRW-TEST-0006")
	assert.Contains(t, body, "Name: Jane Doe")
	assert.Contains(t, body, "Email: jane@example.com")
	assert.Contains(t, body, "Monthly amount: $120.00")
	assert.Contains(t, body, "Estimated annual savings: $288.00")
	assert.Contains(t, body, "bill.pdf (application/pdf, 13 bytes)")
	assert.Contains(t, body, "Bill copy: https://archive.example/bill.pdf")
}

func TestBuildEmailBody_NoAttachment(t *testing.T) {
	body := buildEmailBody(relayLead(), nil, "TRW-TEST-0007")
	assert.NotContains(t, body, "Bill attachment")
}
