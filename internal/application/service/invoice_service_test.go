package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

func TestCreateInvoiceOwnTerminalZeroesFee(t *testing.T) {
	f := newFixture(t)

	invoice, err := f.invoiceService().CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:    f.customer.ID,
		CompanyID:     f.company.ID,
		TotalAmount:   money.MustParse("200.00"),
		FeePercent:    amountPtr("5"),
		IsOurTerminal: true,
	})
	require.NoError(t, err)

	assert.True(t, invoice.FeePercent.IsZero())
	assert.True(t, invoice.FeeValue.IsZero())
	assert.True(t, invoice.IsTerminalSale)
	assert.Equal(t, enum.InvoiceStatusIssued, invoice.Status)
	assert.False(t, invoice.IssuedAt.IsZero())
}

func TestCreateInvoiceKeepsSuppliedFees(t *testing.T) {
	f := newFixture(t)
	svc := f.invoiceService()

	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("150.00"),
		FeePercent:  amountPtr("2.5"),
		FeeValue:    amountPtr("3.75"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2.50", invoice.FeePercent.String())
	assert.Equal(t, "3.75", invoice.FeeValue.String())
	assert.False(t, invoice.IsTerminalSale)

	invoice, err = svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("150.00"),
		FeePercent:  amountPtr("2.5"),
		FeeValue:    amountPtr("4.00"),
		NSU:         strPtr("998877"),
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", invoice.FeeValue.String())
	assert.True(t, invoice.IsTerminalSale)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.invoiceService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInvoiceInput
		field string
	}{
		{"missing fee percent", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: f.company.ID, TotalAmount: money.MustParse("10")}, "fee_percent"},
		{"missing fee value", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: f.company.ID, TotalAmount: money.MustParse("10"), FeePercent: amountPtr("1")}, "fee_value"},
		{"negative fee value", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: f.company.ID, TotalAmount: money.MustParse("10"), FeePercent: amountPtr("1"), FeeValue: amountPtr("-1")}, "fee_value"},
		{"zero total", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: f.company.ID, TotalAmount: money.Zero(), FeePercent: amountPtr("1"), FeeValue: amountPtr("0.10")}, "total_amount"},
		{"unknown customer", CreateInvoiceInput{CustomerID: uuid.New(), CompanyID: f.company.ID, TotalAmount: money.MustParse("10"), FeePercent: amountPtr("1"), FeeValue: amountPtr("0.10")}, "customer_id"},
		{"unknown company", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: uuid.New(), TotalAmount: money.MustParse("10"), FeePercent: amountPtr("1"), FeeValue: amountPtr("0.10")}, "company_id"},
		{"bad status", CreateInvoiceInput{CustomerID: f.customer.ID, CompanyID: f.company.ID, TotalAmount: money.MustParse("10"), FeePercent: amountPtr("1"), FeeValue: amountPtr("0.10"), Status: "RASCUNHO"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := svc.CreateInvoice(ctx, &input)
			require.Error(t, err)
			appErr := apperror.GetAppError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}
}

func TestCreateInvoiceRejectsInactiveCompany(t *testing.T) {
	f := newFixture(t)
	f.company.IsActive = false
	require.NoError(t, f.store.Companies().Update(context.Background(), f.company))

	_, err := f.invoiceService().CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("10"),
		FeePercent:  amountPtr("1"),
		FeeValue:    amountPtr("0.10"),
	})
	require.Error(t, err)
	assert.Equal(t, "company is inactive", apperror.GetAppError(err).Errors[0].Message)
}

func TestUpdateInvoiceMergesAndReappliesRules(t *testing.T) {
	f := newFixture(t)
	svc := f.invoiceService()
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("100.00"),
		FeePercent:  amountPtr("10"),
		FeeValue:    amountPtr("10.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10.00", invoice.FeeValue.String())

	paid := enum.InvoiceStatusPaid
	updated, err := svc.UpdateInvoice(ctx, &UpdateInvoiceInput{ID: invoice.ID, Status: &paid, FeePercent: amountPtr("5")})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, updated.Status)
	assert.Equal(t, "5.00", updated.FeeValue.String())
	assert.False(t, updated.IsTerminalSale)
	require.NotNil(t, updated.Customer)
	assert.Equal(t, f.customer.Name, updated.Customer.Name)

	own := true
	updated, err = svc.UpdateInvoice(ctx, &UpdateInvoiceInput{ID: invoice.ID, IsOurTerminal: &own})
	require.NoError(t, err)
	assert.True(t, updated.IsTerminalSale)
	assert.True(t, updated.FeeValue.IsZero())
	assert.True(t, updated.FeePercent.IsZero())

	_, err = svc.UpdateInvoice(ctx, &UpdateInvoiceInput{ID: uuid.New(), Status: &paid})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListInvoicesFiltersTerminalSales(t *testing.T) {
	f := newFixture(t)
	svc := f.invoiceService()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		issued := base.AddDate(0, 0, i)
		input := &CreateInvoiceInput{
			CustomerID:  f.customer.ID,
			CompanyID:   f.company.ID,
			IssuedAt:    &issued,
			TotalAmount: money.MustParse("10"),
			FeePercent:  amountPtr("1"),
			FeeValue:    amountPtr("0.10"),
		}
		if i%2 == 0 {
			input.TerminalID = strPtr("T-9")
		}
		_, err := svc.CreateInvoice(ctx, input)
		require.NoError(t, err)
	}

	yes := true
	res, err := svc.ListInvoices(ctx, repository.InvoiceFilter{TerminalSale: &yes}, &pagination.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, int64(2), res.Pagination.Total)
	assert.True(t, res.Data[0].IssuedAt.After(res.Data[1].IssuedAt))
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture(t)
	svc := f.invoiceService()
	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("10"),
		FeePercent:  amountPtr("1"),
		FeeValue:    amountPtr("0.10"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvoice(context.Background(), invoice.ID))
	_, err = svc.GetInvoice(context.Background(), invoice.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeletingCustomerCascadesInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invoice, err := f.invoiceService().CreateInvoice(ctx, &CreateInvoiceInput{
		CustomerID:  f.customer.ID,
		CompanyID:   f.company.ID,
		TotalAmount: money.MustParse("10"),
		FeePercent:  amountPtr("1"),
		FeeValue:    amountPtr("0.10"),
	})
	require.NoError(t, err)

	// the fixture terminal references the customer, so remove it first
	require.NoError(t, f.store.Terminals().Delete(ctx, f.terminal.ID))
	require.NoError(t, NewCustomerService(f.store.Customers(), nil).DeleteCustomer(ctx, f.customer.ID))

	got, err := f.store.Invoices().GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
