package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/cache"
	"github.com/sangkips/notas-backoffice/pkg/logger"
)

func newRedisReportCache(t *testing.T) *cache.ReportCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewReportCache(client, 5*time.Minute, logger.Discard())
}

func TestTerminalWritesRefreshCachedPayouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rc := newRedisReportCache(t)

	sales := NewPosSaleService(f.store.Sales(), f.store.Terminals(), f.store.Rates(), f.store.Transactor(), rc, nil, nil)
	reports := NewPosReportService(f.store.PosReports(), f.store.Sales(), rc, time.UTC)
	terminals := NewTerminalService(f.store.Terminals(), f.store.PosCompanies(), f.store.Customers(), rc)

	createSale(t, sales, f.terminal.ID, "150.00", time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC))

	before, err := reports.Payouts(ctx, PayoutQuery{})
	require.NoError(t, err)
	require.NotNil(t, before.TopTerminal)
	assert.Equal(t, "T-001", before.TopTerminal.TerminalCode)
	assert.Equal(t, "Padaria Central", before.TopTerminal.CustomerName)

	other := &entity.Customer{Name: "Mercado Sul", WhatsappNumber: "5511999990002", IsActive: true}
	require.NoError(t, f.store.Customers().Create(ctx, other))

	_, err = terminals.UpdateTerminal(ctx, &UpdateTerminalInput{
		ID:           f.terminal.ID,
		TerminalCode: strPtr("T-RENAMED"),
		CustomerID:   &other.ID,
	})
	require.NoError(t, err)

	after, err := reports.Payouts(ctx, PayoutQuery{})
	require.NoError(t, err)
	require.NotNil(t, after.TopTerminal)
	assert.Equal(t, "T-RENAMED", after.TopTerminal.TerminalCode)
	assert.Equal(t, "Mercado Sul", after.TopTerminal.CustomerName)
}

func TestPosAdminWritesBumpReportVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rc := newRedisReportCache(t)

	companies := NewPosCompanyService(f.store.PosCompanies(), rc)
	terminals := NewTerminalService(f.store.Terminals(), f.store.PosCompanies(), f.store.Customers(), rc)

	version := func() int64 {
		v, err := rc.Version(ctx)
		require.NoError(t, err)
		return v
	}
	start := version()

	_, err := companies.UpdatePosCompany(ctx, &UpdatePosCompanyInput{ID: f.posCompany.ID, Name: strPtr("Adquirente Nova")})
	require.NoError(t, err)
	assert.Equal(t, start+1, version())

	terminal, err := terminals.CreateTerminal(ctx, &CreateTerminalInput{
		PosCompanyID: f.posCompany.ID,
		CustomerID:   f.customer.ID,
		TerminalCode: "T-002",
	})
	require.NoError(t, err)
	assert.Equal(t, start+2, version())

	require.NoError(t, terminals.DeleteTerminal(ctx, terminal.ID))
	assert.Equal(t, start+3, version())

	// failed writes leave cached reports alone
	_, err = terminals.UpdateTerminal(ctx, &UpdateTerminalInput{ID: terminal.ID, TerminalCode: strPtr("T-003")})
	require.Error(t, err)
	assert.Equal(t, start+3, version())
}
