package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

// In-memory stand-ins for the pipeline's storage ports.

type stubJobStore struct {
	jobs map[uuid.UUID]*models.ImportJob
}

func newStubJobStore() *stubJobStore {
	return &stubJobStore{jobs: make(map[uuid.UUID]*models.ImportJob)}
}

func (s *stubJobStore) Create(_ context.Context, job *models.ImportJob) error {
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *stubJobStore) UpdateProgress(_ context.Context, jobID uuid.UUID, processedRows int) error {
	if job, ok := s.jobs[jobID]; ok {
		job.ProcessedRows = processedRows
	}
	return nil
}

func (s *stubJobStore) Finalize(_ context.Context, job *models.ImportJob) error {
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

type stubProductStore struct {
	catalogs  map[string]uuid.UUID
	slugs     map[string]struct{}
	insertErr error
	inserted  []*models.Product
}

func (s *stubProductStore) LoadLeafCatalogNames(context.Context) (map[string]uuid.UUID, error) {
	return s.catalogs, nil
}

func (s *stubProductStore) LoadExistingSlugs(context.Context) (map[string]struct{}, error) {
	return s.slugs, nil
}

func (s *stubProductStore) BatchInsert(_ context.Context, products []*models.Product) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = products
	return nil
}

func newImportTestRouter(products importer.ProductStore, jobs importer.JobStore, maxRows int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	orchestrator := importer.NewOrchestrator(products, jobs, nil, logger)
	handler := NewImportHandler(orchestrator, nil, maxRows, logger)

	router := gin.New()
	router.POST("/products/import", handler.ImportProducts)
	router.GET("/products/import/template", handler.GetImportTemplate)
	return router
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	return uploadBytesRequest(t, filename, []byte(content))
}

func uploadBytesRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportProducts_PartialSuccess(t *testing.T) {
	products := &stubProductStore{
		catalogs: map[string]uuid.UUID{},
		slugs:    map[string]struct{}{},
	}
	router := newImportTestRouter(products, newStubJobStore(), 0)

	csv := "name,slug,base_price,is_active\n" +
		"Walnut Table,walnut-table,149.90,true\n" +
		",oak-table,99.00,true\n" +
		"Walnut Copy,walnut-table,159.90,true\n"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "products.csv", csv))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.ImportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Data.TotalRows)
	assert.Equal(t, 1, resp.Data.SuccessCount)
	assert.Equal(t, 2, resp.Data.ErrorCount)
	assert.Len(t, resp.Data.Errors, 2)
	assert.Len(t, products.inserted, 1)
}

func TestImportProducts_XLSXUpload(t *testing.T) {
	products := &stubProductStore{
		catalogs: map[string]uuid.UUID{},
		slugs:    map[string]struct{}{},
	}
	router := newImportTestRouter(products, newStubJobStore(), 0)

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Products")
	for i, header := range []string{"name", "slug", "base_price", "is_active"} {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Products", cell, header))
	}
	for i, value := range []string{"Walnut Table", "walnut-table", "149.90", "true"} {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Products", cell, value))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadBytesRequest(t, "products.xlsx", buf.Bytes()))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.ImportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.SuccessCount)
	assert.Len(t, products.inserted, 1)
}

func TestImportProducts_FileRequired(t *testing.T) {
	router := newImportTestRouter(&stubProductStore{}, newStubJobStore(), 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/products/import", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_REQUIRED")
}

func TestImportProducts_UnsupportedExtension(t *testing.T) {
	router := newImportTestRouter(&stubProductStore{}, newStubJobStore(), 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "products.pdf", "not a spreadsheet"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FORMAT")
}

func TestImportProducts_EmptyFile(t *testing.T) {
	jobs := newStubJobStore()
	router := newImportTestRouter(&stubProductStore{}, jobs, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "products.csv", "name,slug,base_price,is_active\n"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_FILE")
	assert.Empty(t, jobs.jobs, "no job record for a rejected upload")
}

func TestImportProducts_TooManyRows(t *testing.T) {
	jobs := newStubJobStore()
	router := newImportTestRouter(&stubProductStore{}, jobs, 2)

	csv := "name,slug,base_price,is_active\n" +
		"A,a-product,1,true\n" +
		"B,b-product,1,true\n" +
		"C,c-product,1,true\n"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "products.csv", csv))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_ROWS")
	assert.Empty(t, jobs.jobs)
}

func TestImportProducts_PipelineFault(t *testing.T) {
	products := &stubProductStore{
		catalogs:  map[string]uuid.UUID{},
		slugs:     map[string]struct{}{},
		insertErr: assert.AnError,
	}
	jobs := newStubJobStore()
	router := newImportTestRouter(products, jobs, 0)

	csv := "name,slug,base_price,is_active\nWalnut Table,walnut-table,149.90,true\n"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "products.csv", csv))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "IMPORT_FAILED")

	// The job record survives in its failed state.
	require.Len(t, jobs.jobs, 1)
	for _, job := range jobs.jobs {
		assert.Equal(t, models.ImportStatusFailed, job.Status)
	}
}

func TestGetImportTemplate_JSON(t *testing.T) {
	router := newImportTestRouter(&stubProductStore{}, newStubJobStore(), 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/import/template", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Data    models.ImportTemplate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "products", resp.Data.Entity)
	assert.Len(t, resp.Data.Columns, 11)
}

func TestGetImportTemplate_CSV(t *testing.T) {
	router := newImportTestRouter(&stubProductStore{}, newStubJobStore(), 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/import/template?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products_import_template.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "name,slug,base_price,is_active"))
}
