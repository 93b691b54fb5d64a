package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportStatus represents the status of an import job
type ImportStatus string

const (
	// ImportStatusPending is declared for completeness; jobs are written
	// directly in processing, so the pending window is never observable.
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportRowError represents a validation error for a specific spreadsheet row
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RowErrorList is stored as a JSONB column on the import job record
type RowErrorList []ImportRowError

func (l RowErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = RowErrorList{}
	}
	return json.Marshal(l)
}

func (l *RowErrorList) Scan(value interface{}) error {
	if value == nil {
		*l = RowErrorList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// ImportJob is the durable record of one upload attempt, kept for audit
// independently of the triggering request.
type ImportJob struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primary_key"`
	Status        ImportStatus `json:"status" gorm:"not null;index"`
	TotalRows     int          `json:"totalRows" gorm:"column:total_rows;not null"`
	ProcessedRows int          `json:"processedRows" gorm:"column:processed_rows;not null;default:0"`
	SuccessCount  int          `json:"successCount" gorm:"column:success_count;not null;default:0"`
	ErrorCount    int          `json:"errorCount" gorm:"column:error_count;not null;default:0"`
	Errors        RowErrorList `json:"errors" gorm:"type:jsonb"`
	CreatedBy     string       `json:"createdBy" gorm:"column:created_by;not null;index"`
	CreatedAt     time.Time    `json:"createdAt"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty" gorm:"column:completed_at"`
}

// TableName returns the table name for the ImportJob model
func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportSummary is the synchronous response for a finished import run
type ImportSummary struct {
	JobID        uuid.UUID        `json:"jobId"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	ProcessingMs int64            `json:"processingMs"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Walnut Side Table"},
		{Name: "slug", Description: "Unique URL slug (lowercase, hyphen-separated)", Required: true, Type: "string", Example: "walnut-side-table"},
		{Name: "base_price", Description: "Base price as a decimal", Required: true, Type: "number", Example: "149.90"},
		{Name: "is_active", Description: "Whether the product is visible (true/false, yes/no, 1/0)", Required: true, Type: "boolean", Example: "true"},
		{Name: "description", Description: "Full product description", Required: false, Type: "string", Example: "Solid walnut side table with rounded edges."},
		{Name: "short_description", Description: "One-line teaser shown in listings", Required: false, Type: "string", Example: "Solid walnut, rounded edges"},
		{Name: "catalog_name", Description: "Leaf catalog name - leave empty for uncategorized", Required: false, Type: "string", Example: "Living Room"},
		{Name: "dimensions_width", Description: "Width - requires all four dimension columns", Required: false, Type: "number", Example: "45"},
		{Name: "dimensions_height", Description: "Height - requires all four dimension columns", Required: false, Type: "number", Example: "52"},
		{Name: "dimensions_depth", Description: "Depth - requires all four dimension columns", Required: false, Type: "number", Example: "45"},
		{Name: "dimensions_unit", Description: "Dimension unit (mm, cm, m, in)", Required: false, Type: "string", Example: "cm"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
