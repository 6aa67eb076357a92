package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/request"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// InvoiceHandler handles nota fiscal requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	loc            *time.Location
}

// NewInvoiceHandler creates a new invoice handler. Naive datetimes in
// requests are read in loc.
func NewInvoiceHandler(invoiceService *service.InvoiceService, loc *time.Location) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, loc: loc}
}

// List handles GET /invoices?page&limit&terminal_sale&customer_id&company_id&start&end
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := h.filter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Invoices retrieved successfully", result)
}

func (h *InvoiceHandler) filter(c *gin.Context) (repository.InvoiceFilter, error) {
	var f repository.InvoiceFilter
	var err error
	if f.TerminalSale, err = queryBool(c, "terminal_sale"); err != nil {
		return f, err
	}
	if f.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		return f, err
	}
	if f.CompanyID, err = queryUUID(c, "company_id"); err != nil {
		return f, err
	}
	f.Issued, err = service.Period{Start: c.Query("start"), End: c.Query("end")}.Resolve(h.loc)
	return f, err
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req request.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	issuedAt, err := parseOptionalDateTime("issued_at", req.IssuedAt, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	saleAt, err := parseOptionalDateTime("sale_datetime", req.SaleDatetime, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	total := money.Zero()
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		CustomerID:    req.CustomerID,
		CompanyID:     req.CompanyID,
		IssuedAt:      issuedAt,
		TotalAmount:   total,
		PaidAmount:    req.PaidAmount,
		FeePercent:    req.FeePercent,
		FeeValue:      req.FeeValue,
		Status:        enum.InvoiceStatus(req.Status),
		BuyerName:     req.BuyerName,
		BuyerCPF:      req.BuyerCPF,
		TerminalID:    req.TerminalID,
		NSU:           req.NSU,
		SaleDatetime:  saleAt,
		SaleAmount:    req.SaleAmount,
		IsOurTerminal: req.IsOurTerminal,
		PdfURL:        req.PdfURL,
		NfLink:        req.NfLink,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles GET /invoices/:id, with customer and company
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req request.UpdateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	issuedAt, err := parseOptionalDateTime("issued_at", req.IssuedAt, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	saleAt, err := parseOptionalDateTime("sale_datetime", req.SaleDatetime, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	var status *enum.InvoiceStatus
	if req.Status != nil {
		s := enum.InvoiceStatus(*req.Status)
		status = &s
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &service.UpdateInvoiceInput{
		ID:            id,
		CustomerID:    req.CustomerID,
		CompanyID:     req.CompanyID,
		IssuedAt:      issuedAt,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    req.PaidAmount,
		FeePercent:    req.FeePercent,
		FeeValue:      req.FeeValue,
		Status:        status,
		BuyerName:     req.BuyerName,
		BuyerCPF:      req.BuyerCPF,
		TerminalID:    req.TerminalID,
		NSU:           req.NSU,
		SaleDatetime:  saleAt,
		SaleAmount:    req.SaleAmount,
		IsOurTerminal: req.IsOurTerminal,
		PdfURL:        req.PdfURL,
		NfLink:        req.NfLink,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
