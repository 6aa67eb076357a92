package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/request"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
)

// PosSaleHandler handles terminal sales and payout settlement
type PosSaleHandler struct {
	saleService *service.PosSaleService
	loc         *time.Location
}

func NewPosSaleHandler(saleService *service.PosSaleService, loc *time.Location) *PosSaleHandler {
	return &PosSaleHandler{saleService: saleService, loc: loc}
}

// List handles GET /pos/sales
func (h *PosSaleHandler) List(c *gin.Context) {
	var f repository.PosSaleFilter
	var err error
	if f.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		response.Error(c, err)
		return
	}
	if f.PosCompanyID, err = queryUUID(c, "pos_company_id"); err != nil {
		response.Error(c, err)
		return
	}
	if f.PosTerminalID, err = queryUUID(c, "pos_terminal_id"); err != nil {
		response.Error(c, err)
		return
	}
	if pt := c.Query("payment_type"); pt != "" {
		f.PaymentType = enum.PaymentType(pt)
		if !f.PaymentType.IsValid() {
			response.Error(c, apperror.NewFieldError("payment_type", "is not a known payment type"))
			return
		}
	}
	if f.Sold, err = (service.Period{Start: c.Query("start"), End: c.Query("end")}).Resolve(h.loc); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), f, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Sales retrieved successfully", result)
}

// Create handles POST /pos/sales. Fee and net amount are computed from the
// terminal owner's rates.
func (h *PosSaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	soldAt, err := parseDateTime("sale_datetime", req.SaleDatetime, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		PosTerminalID: req.PosTerminalID,
		NSU:           req.NSU,
		SaleDatetime:  soldAt,
		Amount:        *req.Amount,
		PaymentType:   enum.PaymentType(req.PaymentType),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale created successfully", sale)
}

// Get handles GET /pos/sales/:id
func (h *PosSaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Delete handles DELETE /pos/sales/:id
func (h *PosSaleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}
	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkPaid handles POST /pos/reports/payouts/mark-paid
func (h *PosSaleHandler) MarkPaid(c *gin.Context) {
	var req request.MarkPaidRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.saleService.MarkPaid(c.Request.Context(), &service.MarkPaidInput{
		SaleIDs:       req.SaleIDs,
		Period:        service.Period{Start: req.Start, End: req.End},
		PosTerminalID: req.PosTerminalID,
		PaymentBatch:  req.PaymentBatch,
	}, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sales marked as paid", result)
}
