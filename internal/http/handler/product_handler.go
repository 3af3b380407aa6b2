package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/mapper"
	"github.com/opdexport/quotation-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// List godoc
// @Summary List products
// @Description Admins see the whole catalog; sellers see products of companies they represent
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or SKU"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	principal := auth.MustFromContext(r.Context())
	products, total, err := h.productService.List(r.Context(), principal, page, pageSize, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(products, total, page, pageSize))
}

// ListByCompany godoc
// @Summary List a company's products
// @Tags Products
// @Produce json
// @Param id path string true "Company ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or SKU"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id}/products [get]
func (h *ProductHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	principal := auth.MustFromContext(r.Context())
	products, total, err := h.productService.ListByCompany(r.Context(), principal, companyID, page, pageSize, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(products, total, page, pageSize))
}

// Create godoc
// @Summary Register a product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.CreateProductRequest true "Product payload"
// @Success 201 {object} domain.Product
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	product, err := h.productService.Create(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// Get godoc
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	product, err := h.productService.GetByID(r.Context(), principal, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Update godoc
// @Summary Update a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body domain.CreateProductRequest true "Update payload"
// @Success 200 {object} domain.Product
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	product, err := h.productService.Update(r.Context(), principal, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Delete godoc
// @Summary Delete a product
// @Description Delete a product not referenced by any quotation
// @Tags Products
// @Param id path string true "Product ID"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	if err := h.productService.Delete(r.Context(), principal, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
