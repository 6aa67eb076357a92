package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

type reportFixture struct {
	*fixture
	other    *entity.Customer
	loc      *time.Location
	now      time.Time
	invoices *ReportService
	pos      *PosReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := newFixture(t)
	loc := saoPaulo(t)
	other := &entity.Customer{Name: "Mercado Sul", WhatsappNumber: "5511999990002", IsActive: true}
	require.NoError(t, f.store.Customers().Create(context.Background(), other))

	rf := &reportFixture{
		fixture:  f,
		other:    other,
		loc:      loc,
		now:      time.Date(2024, 5, 20, 15, 0, 0, 0, loc),
		invoices: NewReportService(f.store.InvoiceReports(), f.store.Invoices(), f.store.Customers(), f.store.Companies(), nil, loc),
		pos:      NewPosReportService(f.store.PosReports(), f.store.Sales(), nil, loc),
	}
	rf.invoices.now = func() time.Time { return rf.now }
	rf.pos.now = func() time.Time { return rf.now }
	return rf
}

func (rf *reportFixture) issue(t *testing.T, customerID uuid.UUID, total string, at time.Time) {
	t.Helper()
	_, err := rf.invoiceService().CreateInvoice(context.Background(), &CreateInvoiceInput{
		CustomerID:  customerID,
		CompanyID:   rf.company.ID,
		IssuedAt:    &at,
		TotalAmount: money.MustParse(total),
		FeePercent:  amountPtr("2"),
		FeeValue:    amountPtr(money.MustParse(total).Decimal.Mul(money.MustParse("0.02").Decimal).String()),
	})
	require.NoError(t, err)
}

func (rf *reportFixture) seedInvoices(t *testing.T) {
	rf.issue(t, rf.customer.ID, "100.00", time.Date(2024, 5, 20, 1, 0, 0, 0, rf.loc))
	// 02:30 UTC on the 20th is still the 19th in São Paulo
	rf.issue(t, rf.other.ID, "300.00", time.Date(2024, 5, 19, 23, 30, 0, 0, rf.loc))
	rf.issue(t, rf.customer.ID, "50.00", time.Date(2024, 3, 10, 12, 0, 0, 0, rf.loc))
}

func TestInvoiceSummary(t *testing.T) {
	rf := newReportFixture(t)
	rf.seedInvoices(t)

	summary, err := rf.invoices.InvoiceSummary(context.Background(), ReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Totals.TotalInvoices)
	assert.Equal(t, "450.00", summary.Totals.TotalAmount.String())
	assert.Equal(t, "9.00", summary.Totals.FeeValue.String())
	require.Len(t, summary.ByStatus, 1)
	assert.Equal(t, int64(3), summary.ByStatus[0].TotalInvoices)

	require.Len(t, summary.ByDay, 30)
	assert.Equal(t, "2024-04-21", summary.ByDay[0].Date)
	last, prev := summary.ByDay[29], summary.ByDay[28]
	assert.Equal(t, "2024-05-20", last.Date)
	assert.Equal(t, "20/05", last.Label)
	assert.Equal(t, int64(1), last.TotalInvoices)
	assert.Equal(t, "100.00", last.TotalAmount.String())
	assert.Equal(t, "2024-05-19", prev.Date)
	assert.Equal(t, "300.00", prev.TotalAmount.String())
	assert.True(t, summary.ByDay[0].TotalAmount.IsZero())

	assert.Len(t, summary.ByPeriod, 3)
	require.NotNil(t, summary.TopCustomer)
	assert.Equal(t, rf.other.ID, summary.TopCustomer.ID)
	require.Len(t, summary.TopCustomers, 2)
	assert.Equal(t, rf.customer.ID, summary.TopCustomers[1].ID)
	require.NotNil(t, summary.TopCompany)
	assert.Equal(t, "450.00", summary.TopCompany.TotalAmount.String())
}

func TestInvoiceSummaryByMonthAndCustomer(t *testing.T) {
	rf := newReportFixture(t)
	rf.seedInvoices(t)

	summary, err := rf.invoices.InvoiceSummary(context.Background(), ReportQuery{GroupBy: "month", CustomerID: &rf.customer.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Totals.TotalInvoices)
	require.Len(t, summary.ByPeriod, 2)
	assert.Equal(t, "03/2024", summary.ByPeriod[0].Label)
	assert.Equal(t, "05/2024", summary.ByPeriod[1].Label)
	assert.Equal(t, "2024-05-01", summary.ByPeriod[1].Date)
}

func TestInvoiceSummaryWindowFollowsEnd(t *testing.T) {
	rf := newReportFixture(t)
	rf.seedInvoices(t)

	summary, err := rf.invoices.InvoiceSummary(context.Background(), ReportQuery{Period: Period{Start: "2024-03-01", End: "2024-03-31"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Totals.TotalInvoices)
	require.Len(t, summary.ByDay, 30)
	assert.Equal(t, "2024-03-31", summary.ByDay[29].Date)
}

func TestInvoiceSummaryRejectsBadInput(t *testing.T) {
	rf := newReportFixture(t)

	_, err := rf.invoices.InvoiceSummary(context.Background(), ReportQuery{GroupBy: "week"})
	require.Error(t, err)
	assert.Equal(t, "group_by", apperror.GetAppError(err).Errors[0].Field)

	_, err = rf.invoices.InvoiceSummary(context.Background(), ReportQuery{Period: Period{Start: "2024-05-10", End: "2024-05-01"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestCustomerAndCompanyReports(t *testing.T) {
	rf := newReportFixture(t)
	rf.seedInvoices(t)
	ctx := context.Background()

	report, err := rf.invoices.CustomerReport(ctx, rf.customer.ID, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, rf.customer.Name, report.Customer.Name)
	assert.Equal(t, int64(2), report.Totals.TotalInvoices)
	assert.Len(t, report.Invoices, 2)
	require.Len(t, report.ByCompany, 1)
	assert.Equal(t, rf.company.ID, report.ByCompany[0].ID)

	companyReport, err := rf.invoices.CompanyReport(ctx, rf.company.ID, ReportQuery{GroupBy: "month"})
	require.NoError(t, err)
	require.Len(t, companyReport.ByCustomer, 2)
	assert.Equal(t, rf.other.ID, companyReport.ByCustomer[0].ID)

	_, err = rf.invoices.CustomerReport(ctx, uuid.New(), ReportQuery{})
	assert.True(t, apperror.IsNotFound(err))
	_, err = rf.invoices.CompanyReport(ctx, uuid.New(), ReportQuery{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestPosSummaryAndInactivity(t *testing.T) {
	rf := newReportFixture(t)
	ctx := context.Background()
	sales := rf.saleService()

	otherTerminal := &entity.PosTerminal{PosCompanyID: rf.posCompany.ID, CustomerID: rf.other.ID, TerminalCode: "T-777", IsActive: true}
	require.NoError(t, rf.store.Terminals().Create(ctx, otherTerminal))
	dormant := &entity.Customer{Name: "Inativo Ltda", WhatsappNumber: "5511999990003", IsActive: false}
	require.NoError(t, rf.store.Customers().Create(ctx, dormant))

	createSale(t, sales, rf.terminal.ID, "500.00", rf.now.AddDate(0, 0, -40))
	createSale(t, sales, otherTerminal.ID, "80.00", rf.now.Add(-time.Hour))
	createSale(t, sales, otherTerminal.ID, "20.00", rf.now.Add(-2*time.Hour))

	summary, err := rf.pos.Summary(ctx, Period{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Totals.TotalSales)
	assert.Equal(t, "600.00", summary.Totals.Gross.String())
	require.NotNil(t, summary.TopCustomer)
	assert.Equal(t, rf.customer.ID, summary.TopCustomer.CustomerID)
	require.NotNil(t, summary.TopCustomerToday)
	assert.Equal(t, rf.other.ID, summary.TopCustomerToday.CustomerID)
	assert.Equal(t, "100.00", summary.TopCustomerToday.Total.String())
	assert.Equal(t, int64(2), summary.TopCustomerToday.Count)
	require.NotNil(t, summary.LargestSale)
	assert.Equal(t, "500.00", summary.LargestSale.Amount.String())

	inactive, err := rf.pos.Inactive(ctx)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, rf.customer.ID, inactive[0].ID)
}

func TestPosSummaryEmpty(t *testing.T) {
	rf := newReportFixture(t)
	summary, err := rf.pos.Summary(context.Background(), Period{Start: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Totals.TotalSales)
	assert.True(t, summary.Totals.Gross.IsZero())
	assert.Nil(t, summary.TopCustomer)
	assert.Nil(t, summary.LargestSale)
}

func TestPayoutsSplitPaidAndUnpaid(t *testing.T) {
	rf := newReportFixture(t)
	rf.setRate(t, "10")
	ctx := context.Background()
	sales := rf.saleService()

	paid := createSale(t, sales, rf.terminal.ID, "100.00", rf.now.Add(-time.Hour))
	createSale(t, sales, rf.terminal.ID, "50.00", rf.now.Add(-2*time.Hour))
	_, err := sales.MarkPaid(ctx, &MarkPaidInput{SaleIDs: []uuid.UUID{paid.ID}}, rf.loc)
	require.NoError(t, err)

	payouts, err := rf.pos.Payouts(ctx, PayoutQuery{PosTerminalID: &rf.terminal.ID})
	require.NoError(t, err)
	assert.Len(t, payouts.Sales, 2)
	assert.Equal(t, "150.00", payouts.Totals.Gross.String())
	assert.Equal(t, "100.00", payouts.Totals.GrossPaid.String())
	assert.Equal(t, "90.00", payouts.Totals.NetPaid.String())
	assert.Equal(t, "50.00", payouts.Totals.GrossUnpaid.String())
	assert.Equal(t, "45.00", payouts.Totals.NetUnpaid.String())
	require.NotNil(t, payouts.TopTerminal)
	assert.Equal(t, "T-001", payouts.TopTerminal.TerminalCode)
	assert.Equal(t, rf.customer.Name, payouts.TopTerminal.CustomerName)

	unpaid, err := rf.pos.Payouts(ctx, PayoutQuery{OnlyUnpaid: true})
	require.NoError(t, err)
	require.Len(t, unpaid.Sales, 1)
	assert.Equal(t, "50.00", unpaid.Totals.Gross.String())
	require.NotNil(t, unpaid.Sales[0].PosTerminal)
}

func TestPayoutsWorkbook(t *testing.T) {
	rf := newReportFixture(t)
	ctx := context.Background()
	sales := rf.saleService()
	createSale(t, sales, rf.terminal.ID, "100.00", time.Date(2024, 5, 10, 13, 0, 0, 0, rf.loc))
	createSale(t, sales, rf.terminal.ID, "40.00", time.Date(2024, 5, 11, 9, 30, 0, 0, rf.loc))

	buf, name, err := NewExportService(rf.pos).PayoutsWorkbook(ctx, PayoutQuery{
		Period:        Period{Start: "2024-05-01", End: "2024-05-31"},
		PosTerminalID: &rf.terminal.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "repasses-t-001-2024-05-01-a-2024-05-31.xlsx", name)

	book, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Data", rows[0][0])
	assert.Equal(t, "11/05/2024 09:30", rows[1][0])
	assert.Equal(t, rf.customer.Name, rows[1][1])

	totals, err := book.GetRows(totalsSheet)
	require.NoError(t, err)
	assert.Equal(t, "Bruto", totals[1][0])
	assert.Equal(t, "140", totals[1][1])
}
