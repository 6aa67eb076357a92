package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the invoice dashboards
type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func reportQuery(c *gin.Context) (service.ReportQuery, error) {
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		return service.ReportQuery{}, err
	}
	return service.ReportQuery{
		Period:     period(c),
		CustomerID: customerID,
		GroupBy:    c.Query("group_by"),
	}, nil
}

func period(c *gin.Context) service.Period {
	return service.Period{Start: c.Query("start"), End: c.Query("end")}
}

// Summary handles GET /reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	q, err := reportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.reportService.InvoiceSummary(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Summary retrieved successfully", summary)
}

// Customer handles GET /reports/customers/:id
func (h *ReportHandler) Customer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}
	q, err := reportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reportService.CustomerReport(c.Request.Context(), id, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer report retrieved successfully", report)
}

// Company handles GET /reports/companies/:id
func (h *ReportHandler) Company(c *gin.Context) {
	id, ok := pathID(c, "id", "company")
	if !ok {
		return
	}
	q, err := reportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reportService.CompanyReport(c.Request.Context(), id, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Company report retrieved successfully", report)
}

// PosReportHandler serves POS dashboards and payouts
type PosReportHandler struct {
	posReportService *service.PosReportService
	exportService    *service.ExportService
}

func NewPosReportHandler(posReportService *service.PosReportService, exportService *service.ExportService) *PosReportHandler {
	return &PosReportHandler{posReportService: posReportService, exportService: exportService}
}

// Summary handles GET /pos/reports/summary
func (h *PosReportHandler) Summary(c *gin.Context) {
	summary, err := h.posReportService.Summary(c.Request.Context(), period(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "POS summary retrieved successfully", summary)
}

func payoutQuery(c *gin.Context) (service.PayoutQuery, error) {
	terminalID, err := queryUUID(c, "pos_terminal_id")
	if err != nil {
		return service.PayoutQuery{}, err
	}
	onlyUnpaid, err := queryBool(c, "only_unpaid")
	if err != nil {
		return service.PayoutQuery{}, err
	}
	return service.PayoutQuery{
		Period:        period(c),
		PosTerminalID: terminalID,
		OnlyUnpaid:    onlyUnpaid != nil && *onlyUnpaid,
	}, nil
}

// Payouts handles GET /pos/reports/payouts
func (h *PosReportHandler) Payouts(c *gin.Context) {
	q, err := payoutQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payouts, err := h.posReportService.Payouts(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payouts retrieved successfully", payouts)
}

// Export handles GET /pos/reports/payouts/export as an XLSX download
func (h *PosReportHandler) Export(c *gin.Context) {
	q, err := payoutQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	buf, name, err := h.exportService.PayoutsWorkbook(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Inactive handles GET /pos/reports/inactive
func (h *PosReportHandler) Inactive(c *gin.Context) {
	customers, err := h.posReportService.Inactive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Inactive customers retrieved successfully", customers)
}
