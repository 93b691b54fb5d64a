package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-service/internal/importer"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ImportHandler struct {
	orchestrator *importer.Orchestrator
	jobs         *repository.ImportJobsRepository
	maxRows      int
	logger       *logrus.Entry
}

func NewImportHandler(orchestrator *importer.Orchestrator, jobs *repository.ImportJobsRepository, maxRows int, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		orchestrator: orchestrator,
		jobs:         jobs,
		maxRows:      maxRows,
		logger:       logger.WithField("component", "import-handler"),
	}
}

// ImportProducts runs a bulk product import from an uploaded spreadsheet
// POST /api/v1/products/import
// The whole job runs synchronously; the response carries final counts
// and the complete row error list.
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	startTime := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	filename := strings.ToLower(header.Filename)
	var rows []importer.RawRow
	var decodeErr error
	switch models.ImportFormat(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case models.ImportFormatCSV:
		rows, decodeErr = importer.DecodeCSV(file)
	case models.ImportFormatXLSX:
		rows, decodeErr = importer.DecodeXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	if decodeErr != nil {
		h.respondDecodeError(c, decodeErr)
		return
	}

	if len(rows) == 0 {
		h.respondDecodeError(c, importer.ErrEmptyFile)
		return
	}

	if h.maxRows > 0 && len(rows) > h.maxRows {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TOO_MANY_ROWS",
				Message: fmt.Sprintf("File has %d data rows; the limit per import is %d", len(rows), h.maxRows),
			},
		})
		return
	}

	summary, err := h.orchestrator.Run(c.Request.Context(), rows, userID)
	if err != nil {
		var pipelineErr *importer.PipelineError
		if errors.As(err, &pipelineErr) {
			h.logger.WithError(err).WithField("userId", userID).Error("Import pipeline fault")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "IMPORT_FAILED",
					Message: "The import could not be completed; no partial results were committed for the failed stage",
				},
			})
			return
		}
		h.respondDecodeError(c, err)
		return
	}

	summary.ProcessingMs = time.Since(startTime).Milliseconds()
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    summary,
	})
}

// respondDecodeError maps input-shape errors to 400s; the upload never
// reached the pipeline and no job record exists for it.
func (h *ImportHandler) respondDecodeError(c *gin.Context, err error) {
	code := "PARSE_ERROR"
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		code = "EMPTY_FILE"
	case errors.Is(err, importer.ErrNoSheet):
		code = "NO_SHEET"
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template?format=json|csv|xlsx
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := models.ProductImportTemplate()

	switch format {
	case "csv":
		c.Header("Content-Type", contentTypeCSV)
		c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")
		if err := importer.WriteTemplateCSV(c.Writer, template); err != nil {
			h.logger.WithError(err).Error("Failed to write CSV template")
		}
	case "xlsx":
		c.Header("Content-Type", contentTypeXLSX)
		c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")
		if err := importer.WriteTemplateXLSX(c.Writer, template); err != nil {
			h.logger.WithError(err).Error("Failed to write XLSX template")
		}
	default:
		c.JSON(http.StatusOK, models.SuccessResponse{
			Success: true,
			Data:    template,
		})
	}
}

// GetImportJob returns a persisted job record
// GET /api/v1/products/import/jobs/:id
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    job,
	})
}

// ListImportJobs returns the import history, newest first
// GET /api/v1/products/import/jobs
func (h *ImportHandler) ListImportJobs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	jobs, total, err := h.jobs.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve import jobs",
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    jobs,
		"pagination": models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// DownloadErrorReport exports a job's row errors as a spreadsheet
// GET /api/v1/products/import/jobs/:id/errors?format=csv|xlsx
func (h *ImportHandler) DownloadErrorReport(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	format := models.ImportFormat(c.DefaultQuery("format", "csv"))
	filename := fmt.Sprintf("import_errors_%s", job.ID)

	switch format {
	case models.ImportFormatXLSX:
		c.Header("Content-Type", contentTypeXLSX)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		if err := importer.WriteReportXLSX(c.Writer, job.Errors); err != nil {
			h.logger.WithError(err).Error("Failed to write XLSX error report")
		}
	default:
		c.Header("Content-Type", contentTypeCSV)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		if err := importer.WriteReportCSV(c.Writer, job.Errors); err != nil {
			h.logger.WithError(err).Error("Failed to write CSV error report")
		}
	}
}

func (h *ImportHandler) loadJob(c *gin.Context) (*models.ImportJob, bool) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid job ID format",
			},
		})
		return nil, false
	}

	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "JOB_NOT_FOUND",
					Message: "Import job not found",
				},
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve import job",
			},
		})
		return nil, false
	}
	return job, true
}
