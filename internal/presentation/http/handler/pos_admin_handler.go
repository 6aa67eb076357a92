package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/request"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
)

// PosCompanyHandler handles acquirer CRUD
type PosCompanyHandler struct {
	posCompanyService *service.PosCompanyService
}

func NewPosCompanyHandler(posCompanyService *service.PosCompanyService) *PosCompanyHandler {
	return &PosCompanyHandler{posCompanyService: posCompanyService}
}

func (h *PosCompanyHandler) List(c *gin.Context) {
	result, err := h.posCompanyService.ListPosCompanies(c.Request.Context(), strings.TrimSpace(c.Query("search")), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "POS companies retrieved successfully", result)
}

func (h *PosCompanyHandler) Create(c *gin.Context) {
	var req request.CreatePosCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.posCompanyService.CreatePosCompany(c.Request.Context(), &service.CreatePosCompanyInput{
		Name:     req.Name,
		CNPJ:     req.CNPJ,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "POS company created successfully", company)
}

func (h *PosCompanyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "POS company")
	if !ok {
		return
	}
	company, err := h.posCompanyService.GetPosCompany(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "POS company retrieved successfully", company)
}

func (h *PosCompanyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "POS company")
	if !ok {
		return
	}
	var req request.UpdatePosCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.posCompanyService.UpdatePosCompany(c.Request.Context(), &service.UpdatePosCompanyInput{
		ID:       id,
		Name:     req.Name,
		CNPJ:     req.CNPJ,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "POS company updated successfully", company)
}

func (h *PosCompanyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "POS company")
	if !ok {
		return
	}
	if err := h.posCompanyService.DeletePosCompany(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TerminalHandler handles card terminal CRUD
type TerminalHandler struct {
	terminalService *service.TerminalService
}

func NewTerminalHandler(terminalService *service.TerminalService) *TerminalHandler {
	return &TerminalHandler{terminalService: terminalService}
}

// List filters by pos_company_id and customer_id
func (h *TerminalHandler) List(c *gin.Context) {
	posCompanyID, err := queryUUID(c, "pos_company_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.terminalService.ListTerminals(c.Request.Context(), repository.TerminalFilter{
		PosCompanyID: posCompanyID,
		CustomerID:   customerID,
	}, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Terminals retrieved successfully", result)
}

func (h *TerminalHandler) Create(c *gin.Context) {
	var req request.CreateTerminalRequest
	if !bindJSON(c, &req) {
		return
	}

	terminal, err := h.terminalService.CreateTerminal(c.Request.Context(), &service.CreateTerminalInput{
		PosCompanyID: req.PosCompanyID,
		CustomerID:   req.CustomerID,
		TerminalCode: req.TerminalCode,
		IsActive:     req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Terminal created successfully", terminal)
}

func (h *TerminalHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "terminal")
	if !ok {
		return
	}
	terminal, err := h.terminalService.GetTerminal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Terminal retrieved successfully", terminal)
}

func (h *TerminalHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "terminal")
	if !ok {
		return
	}
	var req request.UpdateTerminalRequest
	if !bindJSON(c, &req) {
		return
	}

	terminal, err := h.terminalService.UpdateTerminal(c.Request.Context(), &service.UpdateTerminalInput{
		ID:           id,
		PosCompanyID: req.PosCompanyID,
		CustomerID:   req.CustomerID,
		TerminalCode: req.TerminalCode,
		IsActive:     req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Terminal updated successfully", terminal)
}

func (h *TerminalHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "terminal")
	if !ok {
		return
	}
	if err := h.terminalService.DeleteTerminal(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RateHandler reads and replaces a customer's POS fee table
type RateHandler struct {
	rateService *service.RateService
}

func NewRateHandler(rateService *service.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

func (h *RateHandler) Get(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id", "customer")
	if !ok {
		return
	}
	rate, err := h.rateService.GetRate(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Rates retrieved successfully", rate)
}

func (h *RateHandler) Upsert(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id", "customer")
	if !ok {
		return
	}
	var req request.UpsertRateRequest
	if !bindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.UpsertRate(c.Request.Context(), &service.UpsertRateInput{
		CustomerID:          customerID,
		DebitPercent:        req.DebitPercent,
		CreditAVistaPercent: req.CreditAVistaPercent,
		Credit2To6Percent:   req.Credit2To6Percent,
		Credit7To12Percent:  req.Credit7To12Percent,
		PixKey:              req.PixKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Rates saved successfully", rate)
}
