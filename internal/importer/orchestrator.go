package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// checkpointInterval is how many rows are processed between progress
// writes. Checkpointing every row would double the write load for no
// observable benefit; observers only need coarse mid-run progress.
const checkpointInterval = 10

// PipelineError is an infrastructure fault that aborted the import run.
// It is distinct from row-level validation errors, which are data faults
// accumulated into the job result and never abort anything.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("import pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Orchestrator drives one import job end to end: validate each row,
// accumulate candidates and errors, checkpoint periodically, persist
// the survivors in a single batch and finalize the job record.
type Orchestrator struct {
	products  ProductStore
	jobs      JobStore
	notifier  ChangeNotifier
	validator *RowValidator
	logger    *logrus.Entry
}

// NewOrchestrator returns an orchestrator. notifier may be nil when no
// event transport is configured.
func NewOrchestrator(products ProductStore, jobs JobStore, notifier ChangeNotifier, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		products:  products,
		jobs:      jobs,
		notifier:  notifier,
		validator: NewRowValidator(),
		logger:    logger.WithField("component", "import-orchestrator"),
	}
}

// Run processes decoded rows sequentially and returns the final summary.
// Partial success is the normal case: invalid rows are reported, valid
// rows are committed, and the job completes either way. Only
// pipeline-level faults (reference-data load, batch insert, job writes,
// cancellation) abort the run, returned as *PipelineError.
//
// An empty input fails before any job record is created.
func (o *Orchestrator) Run(ctx context.Context, rows []RawRow, createdBy string) (*models.ImportSummary, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	tracker := NewJobTracker(o.jobs, o.logger)
	jobID, err := tracker.Create(ctx, len(rows), createdBy)
	if err != nil {
		return nil, &PipelineError{Stage: "job creation", Err: err}
	}

	log := o.logger.WithFields(logrus.Fields{"jobId": jobID, "totalRows": len(rows)})
	log.Info("Import job started")

	// Reference data is loaded once per job, never per row: every lookup
	// inside the loop is an in-memory map hit.
	catalogNames, err := o.products.LoadLeafCatalogNames(ctx)
	if err != nil {
		tracker.Fail(ctx, err)
		return nil, &PipelineError{Stage: "reference data load", Err: err}
	}
	existingSlugs, err := o.products.LoadExistingSlugs(ctx)
	if err != nil {
		tracker.Fail(ctx, err)
		return nil, &PipelineError{Stage: "reference data load", Err: err}
	}

	resolver := NewCatalogResolver(catalogNames)
	detector := NewDuplicateDetector(existingSlugs)

	candidates := make([]*models.Product, 0, len(rows))
	var rowErrors []models.ImportRowError

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			tracker.Fail(ctx, err)
			return nil, &PipelineError{Stage: "row processing", Err: err}
		}

		rowErrors = append(rowErrors, o.processRow(row, detector, resolver, &candidates, createdBy)...)

		if (i+1)%checkpointInterval == 0 {
			tracker.Checkpoint(ctx, i+1)
		}
	}

	// All row-level failures are already accounted for, so the batch
	// insert only ever sees clean data; if it fails anyway that is an
	// infrastructure fault, not a data fault.
	if len(candidates) > 0 {
		if err := o.products.BatchInsert(ctx, candidates); err != nil {
			tracker.Fail(ctx, err)
			return nil, &PipelineError{Stage: "batch insert", Err: err}
		}
	}

	successCount := len(candidates)
	errorCount := len(rows) - successCount
	compiled := Compile(rowErrors)

	if err := tracker.Finalize(ctx, successCount, errorCount, compiled); err != nil {
		return nil, &PipelineError{Stage: "finalize", Err: err}
	}

	if o.notifier != nil && successCount > 0 {
		o.notifier.ProductsImported(ctx, jobID, successCount)
	}

	log.WithFields(logrus.Fields{
		"successCount": successCount,
		"errorCount":   errorCount,
	}).Info("Import job completed")

	return &models.ImportSummary{
		JobID:        jobID,
		TotalRows:    len(rows),
		SuccessCount: successCount,
		ErrorCount:   errorCount,
		Errors:       compiled,
	}, nil
}

// processRow runs one row through the staged checks. The stages run in a
// fixed order and stop at the first failing stage: a row rejected by the
// schema never reaches the duplicate or catalog checks, since those
// depend on valid parsed data. Returns the row's errors, if any; on
// success the built product is appended to candidates.
func (o *Orchestrator) processRow(row RawRow, detector *DuplicateDetector, resolver *CatalogResolver, candidates *[]*models.Product, createdBy string) []models.ImportRowError {
	validated, errs := o.validator.Validate(row)
	if len(errs) > 0 {
		return errs
	}

	rowNum := row.SourceRowNumber()

	if dupErr := detector.CheckAndRegister(validated.Slug, rowNum); dupErr != nil {
		return []models.ImportRowError{*dupErr}
	}

	catalogID, resErr := resolver.Resolve(validated.CatalogName, rowNum)
	if resErr != nil {
		return []models.ImportRowError{*resErr}
	}

	*candidates = append(*candidates, buildProduct(validated, catalogID, createdBy))
	return nil
}

// buildProduct assembles the persistence-ready product from a validated
// row and its resolved catalog. Dimensions arrive either fully populated
// or nil; there is no partial case left at this point.
func buildProduct(row *ValidatedRow, catalogID *uuid.UUID, createdBy string) *models.Product {
	return &models.Product{
		ID:               uuid.New(),
		Name:             row.Name,
		Slug:             row.Slug,
		Description:      row.Description,
		ShortDescription: row.ShortDescription,
		BasePrice:        row.BasePrice,
		CatalogID:        catalogID,
		IsActive:         row.IsActive,
		Dimensions:       row.Dimensions,
		CreatedBy:        &createdBy,
		UpdatedBy:        &createdBy,
	}
}
