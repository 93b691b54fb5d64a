package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogLeafLevel is the tree depth of catalogs that may hold products.
// Level 0 entries are grouping nodes only.
const CatalogLeafLevel = 1

// Dimensions represents the physical dimensions of a product.
// A product either has all four values or none at all; partially
// populated dimension objects are never persisted.
type Dimensions struct {
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Depth  decimal.Decimal `json:"depth"`
	Unit   string          `json:"unit"`
}

func (d Dimensions) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Dimensions) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// Product represents a catalog product entity
type Product struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string          `json:"name" gorm:"not null"`
	Slug             string          `json:"slug" gorm:"not null;uniqueIndex:idx_products_slug"`
	Description      *string         `json:"description,omitempty"`
	ShortDescription *string         `json:"shortDescription,omitempty" gorm:"column:short_description"`
	BasePrice        decimal.Decimal `json:"basePrice" gorm:"column:base_price;type:decimal(12,2);not null"`
	CatalogID        *uuid.UUID      `json:"catalogId,omitempty" gorm:"type:uuid;index"`
	IsActive         bool            `json:"isActive" gorm:"column:is_active;not null;default:true"`
	Dimensions       *Dimensions     `json:"dimensions,omitempty" gorm:"type:jsonb"`
	Catalog          *Catalog        `json:"catalog,omitempty" gorm:"foreignKey:CatalogID"`
	CreatedBy        *string         `json:"createdBy,omitempty"`
	UpdatedBy        *string         `json:"updatedBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Catalog represents a node in the catalog tree. Level 0 nodes group
// leaf catalogs (level 1); only leaf catalogs hold products.
type Catalog struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	ParentID    *uuid.UUID      `json:"parentId,omitempty" gorm:"column:parent_id"`
	Level       int             `json:"level" gorm:"not null;default:0"`
	Position    int             `json:"position" gorm:"not null;default:1"`
	IsActive    *bool           `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"column:deleted_at;index"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name             string      `json:"name" binding:"required"`
	Slug             *string     `json:"slug,omitempty"`
	Description      *string     `json:"description,omitempty"`
	ShortDescription *string     `json:"shortDescription,omitempty"`
	BasePrice        string      `json:"basePrice" binding:"required"`
	CatalogID        *uuid.UUID  `json:"catalogId,omitempty"`
	IsActive         *bool       `json:"isActive,omitempty"`
	Dimensions       *Dimensions `json:"dimensions,omitempty"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name             *string     `json:"name,omitempty"`
	Slug             *string     `json:"slug,omitempty"`
	Description      *string     `json:"description,omitempty"`
	ShortDescription *string     `json:"shortDescription,omitempty"`
	BasePrice        *string     `json:"basePrice,omitempty"`
	CatalogID        *uuid.UUID  `json:"catalogId,omitempty"`
	IsActive         *bool       `json:"isActive,omitempty"`
	Dimensions       *Dimensions `json:"dimensions,omitempty"`
}

// ListProductsRequest represents list filters and pagination
type ListProductsRequest struct {
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	Query     *string    `json:"query,omitempty"`
	CatalogID *uuid.UUID `json:"catalogId,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// ProductResponse wraps a single product
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
}

// ProductListResponse wraps a product list with pagination
type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// CatalogResponse wraps a single catalog
type CatalogResponse struct {
	Success bool     `json:"success"`
	Data    *Catalog `json:"data"`
}

// CatalogListResponse wraps a catalog list
type CatalogListResponse struct {
	Success bool      `json:"success"`
	Data    []Catalog `json:"data"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the Catalog model
func (Catalog) TableName() string {
	return "catalogs"
}
