package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog-service/internal/events"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type ProductsHandler struct {
	repo      *repository.ProductsRepository
	publisher *events.Publisher
}

func NewProductsHandler(repo *repository.ProductsRepository, publisher *events.Publisher) *ProductsHandler {
	return &ProductsHandler{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateProduct creates a new product
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil || basePrice.IsNegative() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "basePrice must be a non-negative decimal",
				Field:   "basePrice",
			},
		})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		BasePrice:        basePrice,
		CatalogID:        req.CatalogID,
		IsActive:         isActive,
		Dimensions:       req.Dimensions,
		CreatedBy:        &userID,
		UpdatedBy:        &userID,
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}

	if err := h.repo.CreateProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, repository.ErrSlugConflict) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "DUPLICATE_SLUG",
					Message: "A product with this slug already exists",
					Field:   "slug",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATE_FAILED",
				Message: "Failed to create product",
			},
		})
		return
	}

	if h.publisher != nil {
		h.publisher.DataChanged(c.Request.Context())
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// GetProducts retrieves products list with filtering and pagination
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	req := &models.ListProductsRequest{Page: page, Limit: limit}
	if search := c.Query("search"); search != "" {
		req.Query = &search
	}
	if catalogID := c.Query("catalogId"); catalogID != "" {
		if id, err := uuid.Parse(catalogID); err == nil {
			req.CatalogID = &id
		}
	}
	if active := c.Query("isActive"); active != "" {
		isActive := active == "true"
		req.IsActive = &isActive
	}

	products, total, err := h.repo.ListProducts(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve products",
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetProduct retrieves a single product by ID
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct updates a product
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	userID := middleware.GetUserID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	updates := map[string]interface{}{"updated_by": userID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.BasePrice != nil {
		basePrice, err := decimal.NewFromString(*req.BasePrice)
		if err != nil || basePrice.IsNegative() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "VALIDATION_ERROR",
					Message: "basePrice must be a non-negative decimal",
					Field:   "basePrice",
				},
			})
			return
		}
		updates["base_price"] = basePrice
	}
	if req.CatalogID != nil {
		updates["catalog_id"] = *req.CatalogID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Dimensions != nil {
		updates["dimensions"] = *req.Dimensions
	}

	if err := h.repo.UpdateProduct(c.Request.Context(), productID, updates); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
		case errors.Is(err, repository.ErrSlugConflict):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "DUPLICATE_SLUG",
					Message: "A product with this slug already exists",
					Field:   "slug",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "UPDATE_FAILED",
					Message: "Failed to update product",
				},
			})
		}
		return
	}

	if h.publisher != nil {
		h.publisher.DataChanged(c.Request.Context())
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		return
	}
	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct soft-deletes a product
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	if err := h.repo.DeleteProduct(c.Request.Context(), productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete product",
			},
		})
		return
	}

	if h.publisher != nil {
		h.publisher.DataChanged(c.Request.Context())
	}

	message := "Product deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &message,
	})
}

// GetCatalogs lists the catalog tree
func (h *ProductsHandler) GetCatalogs(c *gin.Context) {
	catalogs, err := h.repo.ListCatalogs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve catalogs",
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.CatalogListResponse{
		Success: true,
		Data:    catalogs,
	})
}

// GetCatalog retrieves a single catalog by ID
func (h *ProductsHandler) GetCatalog(c *gin.Context) {
	catalogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid catalog ID format",
			},
		})
		return
	}

	catalog, err := h.repo.GetCatalogByID(c.Request.Context(), catalogID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Catalog not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CatalogResponse{
		Success: true,
		Data:    catalog,
	})
}
