package importer

import (
	"fmt"

	"catalog-service/internal/models"
)

// DuplicateDetector tracks which slugs have already been claimed: the
// persisted set is loaded once when the job starts, the batch set grows
// as rows are accepted. Built per job; not safe for concurrent use,
// which matches the strictly sequential row loop.
type DuplicateDetector struct {
	persisted map[string]struct{}
	inBatch   map[string]struct{}
}

// NewDuplicateDetector constructs a detector seeded with the slugs
// already persisted before the job started.
func NewDuplicateDetector(persisted map[string]struct{}) *DuplicateDetector {
	if persisted == nil {
		persisted = make(map[string]struct{})
	}
	return &DuplicateDetector{
		persisted: persisted,
		inBatch:   make(map[string]struct{}),
	}
}

// CheckAndRegister reports whether the slug is still free and, if so,
// claims it for the current batch so a later row with the same slug is
// rejected even though both rows are new to the database. The in-file
// check runs before the database check; the two produce distinct errors.
func (d *DuplicateDetector) CheckAndRegister(slug string, rowNum int) *models.ImportRowError {
	if _, ok := d.inBatch[slug]; ok {
		return &models.ImportRowError{
			Row:     rowNum,
			Field:   ColSlug,
			Code:    CodeDuplicateInFile,
			Message: fmt.Sprintf("Duplicate slug '%s' in import file", slug),
		}
	}
	if _, ok := d.persisted[slug]; ok {
		return &models.ImportRowError{
			Row:     rowNum,
			Field:   ColSlug,
			Code:    CodeSlugExists,
			Message: fmt.Sprintf("A product with slug '%s' already exists", slug),
		}
	}
	d.inBatch[slug] = struct{}{}
	return nil
}
