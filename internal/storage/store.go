// Package storage is the pipeline's only persistence boundary: a narrow
// document-table interface plus the local JSON snapshot safety net.
package storage

import (
	"context"

	"gr_scraper/internal/models"
)

// UpdatePatch carries the only fields a later verification pass may change
// on a stored document, keyed by GR number.
type UpdatePatch struct {
	GRNo             string
	PDFValid         *bool
	PDFStatus        string
	VerificationDate string
}

// Store is the consumed storage collaborator. Discovery writes batches,
// reads the existing URL set, and patches verification outcomes; everything
// else about the backend is out of scope.
type Store interface {
	// Insert persists records, degrading from one batch write to
	// per-record writes on batch failure. It returns how many records
	// made it in; err is non-nil only when the backend is unusable.
	Insert(ctx context.Context, records []*models.DocumentRecord) (int, error)

	// Search returns records matching the filter; a zero filter returns
	// everything.
	Search(ctx context.Context, filter models.SearchFilter) ([]*models.DocumentRecord, error)

	// ExistingURLs projects pdf_url over all stored records.
	ExistingURLs(ctx context.Context) ([]string, error)

	// Count returns the total number of stored documents.
	Count(ctx context.Context) (int64, error)

	// ByBranch returns all documents of one branch.
	ByBranch(ctx context.Context, branch models.BranchCode) ([]*models.DocumentRecord, error)

	// Branches returns the distinct branch values present.
	Branches(ctx context.Context) ([]string, error)

	// Update applies a verification patch to the document with the
	// patch's GR number.
	Update(ctx context.Context, patch UpdatePatch) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}
