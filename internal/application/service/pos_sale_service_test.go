package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

func createSale(t *testing.T, svc *PosSaleService, terminalID uuid.UUID, amount string, at time.Time) *entity.PosSale {
	t.Helper()
	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PosTerminalID: terminalID,
		NSU:           uuid.NewString()[:8],
		SaleDatetime:  at,
		Amount:        money.MustParse(amount),
		PaymentType:   enum.PaymentTypeCreditAVista,
	})
	require.NoError(t, err)
	return sale
}

func TestCreateSaleAppliesCustomerRate(t *testing.T) {
	f := newFixture(t)
	f.setRate(t, "3.5")
	svc := f.saleService()

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PosTerminalID: f.terminal.ID,
		NSU:           "000123",
		SaleDatetime:  time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC),
		Amount:        money.MustParse("100.00"),
		PaymentType:   enum.PaymentTypeCreditAVista,
	})
	require.NoError(t, err)

	assert.Equal(t, "3.50", sale.FeePercent.String())
	assert.Equal(t, "3.50", sale.FeeValue.String())
	assert.Equal(t, "96.50", sale.NetAmount.String())
	assert.Equal(t, f.customer.ID, sale.CustomerID)
	assert.Equal(t, f.posCompany.ID, sale.PosCompanyID)
	assert.False(t, sale.Paid)
}

func TestCreateSalePixAndMissingRateCostNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PosTerminalID: f.terminal.ID,
		NSU:           "1",
		SaleDatetime:  time.Now(),
		Amount:        money.MustParse("55.10"),
		PaymentType:   enum.PaymentTypeDebit,
	})
	require.NoError(t, err)
	assert.True(t, sale.FeeValue.IsZero())
	assert.Equal(t, "55.10", sale.NetAmount.String())

	f.setRate(t, "3.5")
	sale, err = svc.CreateSale(context.Background(), &CreateSaleInput{
		PosTerminalID: f.terminal.ID,
		NSU:           "2",
		SaleDatetime:  time.Now(),
		Amount:        money.MustParse("55.10"),
		PaymentType:   enum.PaymentTypePix,
	})
	require.NoError(t, err)
	assert.True(t, sale.FeePercent.IsZero())
	assert.Equal(t, "55.10", sale.NetAmount.String())
}

func TestCreateSaleTerminalChecks(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	ctx := context.Background()

	input := &CreateSaleInput{
		PosTerminalID: uuid.New(),
		NSU:           "1",
		SaleDatetime:  time.Now(),
		Amount:        money.MustParse("10"),
		PaymentType:   enum.PaymentTypeDebit,
	}
	_, err := svc.CreateSale(ctx, input)
	assert.True(t, apperror.IsNotFound(err))

	f.terminal.IsActive = false
	require.NoError(t, f.store.Terminals().Update(ctx, f.terminal))
	input.PosTerminalID = f.terminal.ID
	_, err = svc.CreateSale(ctx, input)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
	assert.Equal(t, "Terminal is inactive", err.Error())
}

func TestCreateSaleValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.saleService().CreateSale(context.Background(), &CreateSaleInput{
		PosTerminalID: f.terminal.ID,
		Amount:        money.MustParse("-1"),
		PaymentType:   "BOLETO",
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	var fields []string
	for _, fe := range appErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"nsu", "sale_datetime", "amount", "payment_type"}, fields)
}

func TestMarkPaidExplicitIDsSkipsAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	ctx := context.Background()

	a := createSale(t, svc, f.terminal.ID, "10.00", time.Now())
	b := createSale(t, svc, f.terminal.ID, "20.00", time.Now())

	first, err := svc.MarkPaid(ctx, &MarkPaidInput{SaleIDs: []uuid.UUID{b.ID}, PaymentBatch: "lote-1"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Updated)

	res, err := svc.MarkPaid(ctx, &MarkPaidInput{SaleIDs: []uuid.UUID{a.ID, b.ID, a.ID}, PaymentBatch: "lote-2"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)
	assert.Equal(t, int64(1), res.AlreadyPaid)
	assert.Equal(t, "lote-2", res.Batch)

	gotA, _ := f.store.Sales().GetByID(ctx, a.ID)
	gotB, _ := f.store.Sales().GetByID(ctx, b.ID)
	assert.True(t, gotA.Paid)
	assert.True(t, gotB.Paid)
	assert.Equal(t, "lote-2", *gotA.PaymentBatch)
	assert.Equal(t, "lote-1", *gotB.PaymentBatch)
	assert.Equal(t, "20.00", gotB.Amount.String())

	again, err := svc.MarkPaid(ctx, &MarkPaidInput{SaleIDs: []uuid.UUID{a.ID, b.ID}}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Updated)
	assert.Equal(t, int64(2), again.AlreadyPaid)
}

func TestMarkPaidByPeriodAndTerminal(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	ctx := context.Background()

	other := &entity.PosTerminal{PosCompanyID: f.posCompany.ID, CustomerID: f.customer.ID, TerminalCode: "T-002", IsActive: true}
	require.NoError(t, f.store.Terminals().Create(ctx, other))

	inRange := createSale(t, svc, f.terminal.ID, "10.00", time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	outOfRange := createSale(t, svc, f.terminal.ID, "10.00", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	otherTerminal := createSale(t, svc, other.ID, "10.00", time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	res, err := svc.MarkPaid(ctx, &MarkPaidInput{
		Period:        Period{Start: "2024-05-01", End: "2024-05-31"},
		PosTerminalID: &f.terminal.ID,
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)

	for id, want := range map[uuid.UUID]bool{inRange.ID: true, outOfRange.ID: false, otherTerminal.ID: false} {
		got, _ := f.store.Sales().GetByID(ctx, id)
		assert.Equal(t, want, got.Paid)
	}
}

func TestMarkPaidDefaultsBatchName(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	svc.now = func() time.Time { return time.UnixMilli(1716220800123) }
	sale := createSale(t, svc, f.terminal.ID, "10.00", time.Now())

	res, err := svc.MarkPaid(context.Background(), &MarkPaidInput{SaleIDs: []uuid.UUID{sale.ID}}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "fechamento-1716220800123", res.Batch)

	got, _ := f.store.Sales().GetByID(context.Background(), sale.ID)
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(time.UnixMilli(1716220800123)))
}

func TestMarkPaidRequiresSelection(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	sale := createSale(t, svc, f.terminal.ID, "80.00", time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC))

	_, err := svc.MarkPaid(context.Background(), &MarkPaidInput{}, time.UTC)
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	require.NotEmpty(t, appErr.Errors)
	assert.Equal(t, "sale_ids", appErr.Errors[0].Field)

	// an empty selection leaves every sale unpaid
	got, err := f.store.Sales().GetByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.False(t, got.Paid)
}

func TestListSalesPagesReproduceOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		createSale(t, svc, f.terminal.ID, "1.00", base.Add(time.Duration(i)*time.Hour))
	}

	all, err := f.store.Sales().ListAll(context.Background(), repository.PosSaleFilter{})
	require.NoError(t, err)

	var paged []entity.PosSale
	for page := 1; page <= 3; page++ {
		res, err := svc.ListSales(context.Background(), repository.PosSaleFilter{}, &pagination.PaginationParams{Page: page, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Pagination.Pages)
		assert.Equal(t, int64(7), res.Pagination.Total)
		paged = append(paged, res.Data...)
	}

	require.Len(t, paged, 7)
	for i := range all {
		assert.Equal(t, all[i].ID, paged[i].ID)
	}
	assert.True(t, paged[0].SaleDatetime.After(paged[6].SaleDatetime))
}

func TestDeleteSale(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	sale := createSale(t, svc, f.terminal.ID, "1.00", time.Now())

	require.NoError(t, svc.DeleteSale(context.Background(), sale.ID))
	_, err := svc.GetSale(context.Background(), sale.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(svc.DeleteSale(context.Background(), sale.ID)))
}
