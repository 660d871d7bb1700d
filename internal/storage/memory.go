package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gr_scraper/internal/models"
)

// Memory is an in-process Store used by dry runs and tests. Same contract as
// Mongo, minus durability.
type Memory struct {
	mu      sync.Mutex
	records []*models.DocumentRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Seed preloads records, bypassing Insert accounting.
func (m *Memory) Seed(records ...*models.DocumentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

func (m *Memory) Insert(_ context.Context, records []*models.DocumentRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return len(records), nil
}

func matches(r *models.DocumentRecord, filter models.SearchFilter) bool {
	if filter.GRNo != "" && !strings.Contains(strings.ToLower(r.GRNo), strings.ToLower(filter.GRNo)) {
		return false
	}
	if filter.Branch != "" && r.Branch != filter.Branch {
		return false
	}
	if filter.Date != "" && r.Date != filter.Date {
		return false
	}
	if filter.Subject != "" && !strings.Contains(strings.ToLower(r.Subject), strings.ToLower(filter.Subject)) {
		return false
	}
	return true
}

func (m *Memory) Search(_ context.Context, filter models.SearchFilter) ([]*models.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.DocumentRecord
	for _, r := range m.records {
		if matches(r, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ExistingURLs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	urls := make([]string, 0, len(m.records))
	for _, r := range m.records {
		if r.PDFURL != "" {
			urls = append(urls, r.PDFURL)
		}
	}
	return urls, nil
}

func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *Memory) ByBranch(ctx context.Context, branch models.BranchCode) ([]*models.DocumentRecord, error) {
	return m.Search(ctx, models.SearchFilter{Branch: branch})
}

func (m *Memory) Branches(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	for _, r := range m.records {
		seen[string(r.Branch)] = struct{}{}
	}
	branches := make([]string, 0, len(seen))
	for b := range seen {
		branches = append(branches, b)
	}
	sort.Strings(branches)
	return branches, nil
}

func (m *Memory) Update(_ context.Context, patch UpdatePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.GRNo != patch.GRNo {
			continue
		}
		if patch.PDFValid != nil {
			valid := *patch.PDFValid
			r.PDFValid = &valid
		}
		if patch.PDFStatus != "" {
			r.PDFStatus = patch.PDFStatus
		}
		if patch.VerificationDate != "" {
			r.VerificationDate = patch.VerificationDate
		}
	}
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }
