package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/testutil"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

type fixture struct {
	store      *testutil.Store
	customer   *entity.Customer
	company    *entity.Company
	posCompany *entity.PosCompany
	terminal   *entity.PosTerminal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := testutil.NewStore()

	customer := &entity.Customer{Name: "Padaria Central", WhatsappNumber: "5511999990001", IsActive: true, UsesPOS: true, UsesNF: true}
	require.NoError(t, store.Customers().Create(ctx, customer))

	company := &entity.Company{CNPJ: "12.345.678/0001-90", Name: "Emissora Ltda", AccessKey: "key", IsActive: true}
	require.NoError(t, store.Companies().Create(ctx, company))

	posCompany := &entity.PosCompany{Name: "Adquirente", CNPJ: "98.765.432/0001-10", IsActive: true}
	require.NoError(t, store.PosCompanies().Create(ctx, posCompany))

	terminal := &entity.PosTerminal{PosCompanyID: posCompany.ID, CustomerID: customer.ID, TerminalCode: "T-001", IsActive: true}
	require.NoError(t, store.Terminals().Create(ctx, terminal))

	return &fixture{store: store, customer: customer, company: company, posCompany: posCompany, terminal: terminal}
}

func (f *fixture) setRate(t *testing.T, creditAVista string) {
	t.Helper()
	require.NoError(t, f.store.Rates().Upsert(context.Background(), &entity.CustomerRate{
		CustomerID:          f.customer.ID,
		DebitPercent:        money.MustParse("1.99"),
		CreditAVistaPercent: money.MustParse(creditAVista),
		Credit2To6Percent:   money.MustParse("4.5"),
		Credit7To12Percent:  money.MustParse("6"),
	}))
}

func (f *fixture) saleService() *PosSaleService {
	return NewPosSaleService(f.store.Sales(), f.store.Terminals(), f.store.Rates(), f.store.Transactor(), nil, nil, nil)
}

func (f *fixture) invoiceService() *InvoiceService {
	return NewInvoiceService(f.store.Invoices(), f.store.Customers(), f.store.Companies(), f.store.Transactor(), nil)
}

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func amountPtr(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

func strPtr(s string) *string { return &s }
