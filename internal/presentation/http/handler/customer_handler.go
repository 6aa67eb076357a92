package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/notas-backoffice/internal/application/service"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/request"
	"github.com/sangkips/notas-backoffice/internal/presentation/http/dto/response"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List handles listing customers, filtered by search and active
func (h *CustomerHandler) List(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := repository.CustomerFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Active: active,
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Customers retrieved successfully", result)
}

// Create handles creating a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	fee := money.Zero()
	if req.FeePercent != nil {
		fee = *req.FeePercent
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		Name:           req.Name,
		WhatsappNumber: req.WhatsappNumber,
		FeePercent:     fee,
		IsActive:       req.IsActive,
		UsesNF:         req.UsesNF,
		UsesPOS:        req.UsesPOS,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// Get handles getting a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	var req request.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), &service.UpdateCustomerInput{
		ID:             id,
		Name:           req.Name,
		WhatsappNumber: req.WhatsappNumber,
		FeePercent:     req.FeePercent,
		IsActive:       req.IsActive,
		UsesNF:         req.UsesNF,
		UsesPOS:        req.UsesPOS,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CompanyHandler handles nota fiscal issuer requests
type CompanyHandler struct {
	companyService *service.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) List(c *gin.Context) {
	result, err := h.companyService.ListCompanies(c.Request.Context(), strings.TrimSpace(c.Query("search")), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Companies retrieved successfully", result)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var req request.CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), &service.CreateCompanyInput{
		CNPJ:      req.CNPJ,
		Name:      req.Name,
		AccessKey: req.AccessKey,
		IsActive:  req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Company created successfully", company)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "company")
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company retrieved successfully", company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "company")
	if !ok {
		return
	}

	var req request.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), &service.UpdateCompanyInput{
		ID:        id,
		CNPJ:      req.CNPJ,
		Name:      req.Name,
		AccessKey: req.AccessKey,
		IsActive:  req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company updated successfully", company)
}

func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "company")
	if !ok {
		return
	}

	if err := h.companyService.DeleteCompany(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
