package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

const (
	salesSheet  = "Vendas"
	totalsSheet = "Totais"
	sheetTime   = "02/01/2006 15:04"
)

var salesHeader = []interface{}{
	"Data", "Cliente", "Terminal", "Maquininha", "NSU", "Tipo",
	"Valor bruto", "Taxa %", "Taxa R$", "Valor líquido", "Pago", "Lote",
}

// ExportService renders payout reports as spreadsheets
type ExportService struct {
	reports *PosReportService
}

func NewExportService(reports *PosReportService) *ExportService {
	return &ExportService{reports: reports}
}

// PayoutsWorkbook builds an XLSX with one row per sale and a totals sheet.
// It returns the file contents and a suggested file name.
func (s *ExportService) PayoutsWorkbook(ctx context.Context, q PayoutQuery) (*bytes.Buffer, string, error) {
	payouts, err := s.reports.Payouts(ctx, q)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, "", err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}

	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return nil, "", err
	}
	if err := f.SetRowStyle(salesSheet, 1, 1, bold); err != nil {
		return nil, "", err
	}
	for i, sale := range payouts.Sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		row := saleRow(sale, s.reports.loc)
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return nil, "", err
		}
	}
	if err := f.SetColWidth(salesSheet, "A", "L", 16); err != nil {
		return nil, "", err
	}

	if _, err := f.NewSheet(totalsSheet); err != nil {
		return nil, "", err
	}
	t := payouts.Totals
	totals := [][]interface{}{
		{"Vendas", t.TotalSales},
		{"Bruto", t.Gross.Float64()},
		{"Taxas", t.Fees.Float64()},
		{"Líquido", t.Net.Float64()},
		{"Bruto pago", t.GrossPaid.Float64()},
		{"Líquido pago", t.NetPaid.Float64()},
		{"Bruto em aberto", t.GrossUnpaid.Float64()},
		{"Líquido em aberto", t.NetUnpaid.Float64()},
	}
	for i, row := range totals {
		row := row
		if err := f.SetSheetRow(totalsSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, "", err
		}
	}
	if err := f.SetColStyle(totalsSheet, "A", bold); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(totalsSheet, "A", "A", 20); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf, payoutsFileName(q, payouts), nil
}

func saleRow(sale entity.PosSale, loc *time.Location) []interface{} {
	customer, terminal, acquirer := "", "", ""
	if sale.Customer != nil {
		customer = sale.Customer.Name
	}
	if sale.PosTerminal != nil {
		terminal = sale.PosTerminal.TerminalCode
	}
	if sale.PosCompany != nil {
		acquirer = sale.PosCompany.Name
	}
	paid, batch := "Não", ""
	if sale.Paid {
		paid = "Sim"
	}
	if sale.PaymentBatch != nil {
		batch = *sale.PaymentBatch
	}
	return []interface{}{
		sale.SaleDatetime.In(loc).Format(sheetTime),
		customer,
		terminal,
		acquirer,
		sale.NSU,
		string(sale.PaymentType),
		sale.Amount.Float64(),
		sale.FeePercent.Float64(),
		sale.FeeValue.Float64(),
		sale.NetAmount.Float64(),
		paid,
		batch,
	}
}

// payoutsFileName names the export after the terminal and period, e.g.
// repasses-t-001-2024-05-01-a-2024-05-31.xlsx
func payoutsFileName(q PayoutQuery, payouts *Payouts) string {
	parts := []string{"repasses"}
	if q.PosTerminalID != nil && len(payouts.Sales) > 0 && payouts.Sales[0].PosTerminal != nil {
		parts = append(parts, payouts.Sales[0].PosTerminal.TerminalCode)
	}
	if start := strings.TrimSpace(q.Period.Start); start != "" {
		parts = append(parts, start)
	}
	if end := strings.TrimSpace(q.Period.End); end != "" {
		parts = append(parts, "a", end)
	}
	return utils.Slugify(strings.Join(parts, " ")) + ".xlsx"
}
