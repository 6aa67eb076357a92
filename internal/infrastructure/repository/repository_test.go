package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/logger"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// openTestDB connects to TEST_DATABASE_DSN and resets the schema. Tests are
// skipped when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, logger.Discard()))
	require.NoError(t, db.Exec(`TRUNCATE pos_sales, pos_customer_rates, pos_terminals, pos_companies,
		invoices, companies, customers, idempotency_keys, password_reset_tokens, system_users CASCADE`).Error)
	return db
}

type posFixture struct {
	customer *entity.Customer
	company  *entity.PosCompany
	terminal *entity.PosTerminal
}

func seedPos(t *testing.T, db *gorm.DB, name string) posFixture {
	t.Helper()
	ctx := context.Background()

	customer := &entity.Customer{
		Name:           name,
		WhatsappNumber: uuid.NewString()[:12],
		FeePercent:     money.MustParse("3"),
		IsActive:       true,
	}
	require.NoError(t, NewCustomerRepository(db).Create(ctx, customer))

	company := &entity.PosCompany{Name: "Stone " + name, CNPJ: uuid.NewString()[:18], IsActive: true}
	require.NoError(t, NewPosCompanyRepository(db).Create(ctx, company))

	terminal := &entity.PosTerminal{
		PosCompanyID: company.ID,
		CustomerID:   customer.ID,
		TerminalCode: "T-" + name,
		IsActive:     true,
	}
	require.NoError(t, NewPosTerminalRepository(db).Create(ctx, terminal))

	return posFixture{customer: customer, company: company, terminal: terminal}
}

func createSale(t *testing.T, db *gorm.DB, fx posFixture, amount string, at time.Time) *entity.PosSale {
	t.Helper()
	sale := &entity.PosSale{
		CustomerID:    fx.customer.ID,
		PosCompanyID:  fx.company.ID,
		PosTerminalID: fx.terminal.ID,
		NSU:           uuid.NewString()[:8],
		SaleDatetime:  at,
		Amount:        money.MustParse(amount),
		PaymentType:   enum.PaymentTypeDebit,
		FeePercent:    money.Zero(),
		FeeValue:      money.Zero(),
		NetAmount:     money.MustParse(amount),
	}
	require.NoError(t, NewPosSaleRepository(db).Create(context.Background(), sale))
	return sale
}

func TestMarkPaidOnlyFlipsUnpaidRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fx := seedPos(t, db, "Padaria")
	sales := NewPosSaleRepository(db)

	a := createSale(t, db, fx, "100.00", time.Now())
	b := createSale(t, db, fx, "50.00", time.Now())

	firstPaidAt := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	n, err := sales.MarkPaid(ctx, domainRepo.PaidSelection{IDs: []uuid.UUID{b.ID}}, firstPaidAt, "first")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	already, err := sales.CountPaid(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, already)

	tx := NewTransactor(db)
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err = sales.MarkPaid(ctx, domainRepo.PaidSelection{IDs: []uuid.UUID{a.ID, b.ID}}, time.Now(), "second")
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	gotB, err := sales.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, gotB.Paid)
	assert.Equal(t, "first", *gotB.PaymentBatch)

	gotA, err := sales.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.Paid)
	assert.Equal(t, "second", *gotA.PaymentBatch)
}

func TestTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fx := seedPos(t, db, "Mercado")
	sale := createSale(t, db, fx, "10.00", time.Now())
	sales := NewPosSaleRepository(db)

	err := NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := sales.MarkPaid(ctx, domainRepo.PaidSelection{IDs: []uuid.UUID{sale.ID}}, time.Now(), "x"); err != nil {
			return err
		}
		return apperror.NewBadRequestError("abort")
	})
	require.Error(t, err)

	got, err := sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.False(t, got.Paid)
}

func TestCustomersWithoutSalesSince(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	active := seedPos(t, db, "Acougue")
	idle := seedPos(t, db, "Bazar")
	createSale(t, db, active, "20.00", time.Now().AddDate(0, 0, -2))
	createSale(t, db, idle, "20.00", time.Now().AddDate(0, 0, -45))

	refs, err := NewPosReportRepository(db).CustomersWithoutSalesSince(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, idle.customer.ID, refs[0].ID)
}

func TestDuplicateTerminalCodeIsConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fx := seedPos(t, db, "Farmacia")

	dup := &entity.PosTerminal{
		PosCompanyID: fx.company.ID,
		CustomerID:   fx.customer.ID,
		TerminalCode: fx.terminal.TerminalCode,
		IsActive:     true,
	}
	err := NewPosTerminalRepository(db).Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, "Terminal code already registered for this POS company", apperror.GetAppError(err).Message)
}

func TestSaleTotalsAndListOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fx := seedPos(t, db, "Livraria")
	sales := NewPosSaleRepository(db)

	older := createSale(t, db, fx, "10.00", time.Now().Add(-2*time.Hour))
	newer := createSale(t, db, fx, "30.50", time.Now().Add(-time.Hour))
	_, err := sales.MarkPaid(ctx, domainRepo.PaidSelection{IDs: []uuid.UUID{older.ID}}, time.Now(), "b")
	require.NoError(t, err)

	list, total, err := sales.List(ctx, domainRepo.PosSaleFilter{}, &pagination.PaginationParams{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, newer.ID, list[0].ID)
	require.NotNil(t, list[0].PosTerminal)

	totals, err := NewPosReportRepository(db).Totals(ctx, domainRepo.PosSaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, "40.50", totals.Gross.String())
	assert.Equal(t, "10.00", totals.GrossPaid.String())
	assert.Equal(t, "30.50", totals.GrossUnpaid.String())
	assert.EqualValues(t, 2, totals.TotalSales)
}
