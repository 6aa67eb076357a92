package service

import "context"

// ReportCache stores computed report payloads. Implementations must fall
// back to the loader when the backing store is unavailable.
type ReportCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	Invalidate(ctx context.Context)
}

// SaleMetrics receives business counters for POS activity
type SaleMetrics interface {
	SaleCreated(paymentType string)
	SalesMarkedPaid(n int64)
}

// PasswordResetMailer delivers recovery links
type PasswordResetMailer interface {
	SendPasswordResetEmail(toEmail, token string) error
}

type noopCache struct{}

func (noopCache) BuildKey(_ context.Context, parts ...string) (string, error) { return "", nil }

func (noopCache) FetchJSON(ctx context.Context, _ string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	return fetchDirect(ctx, dest, loader)
}

func (noopCache) Invalidate(context.Context) {}

type noopMetrics struct{}

func (noopMetrics) SaleCreated(string)    {}
func (noopMetrics) SalesMarkedPaid(int64) {}
