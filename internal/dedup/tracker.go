// Package dedup owns the two per-run bounded structures: the set of already
// known PDF URLs and the per-branch quota counters. The tracker is rebuilt
// from storage at the start of every run, which is what makes repeated runs
// idempotent: nothing it decides outlives the run.
package dedup

import (
	"sync"

	"gr_scraper/internal/models"
)

// Verdict says why a record was rejected, or that it was accepted.
type Verdict int

const (
	Accepted Verdict = iota
	DuplicateURL
	QuotaReached
)

// Tracker enforces URL uniqueness and the per-branch quota. Accept is
// mutex-serialized so page fetches may be parallelized without racing past
// the quota.
type Tracker struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	counts    map[models.BranchCode]int
	perBranch int
}

// NewTracker seeds the tracker with URLs already present in storage.
// perBranch caps how many new documents one branch may contribute per run.
func NewTracker(existingURLs []string, perBranch int) *Tracker {
	seen := make(map[string]struct{}, len(existingURLs))
	for _, u := range existingURLs {
		if u != "" {
			seen[u] = struct{}{}
		}
	}
	return &Tracker{
		seen:      seen,
		counts:    make(map[models.BranchCode]int),
		perBranch: perBranch,
	}
}

// Accept decides whether a record survives. An accepted record's URL is
// remembered immediately, so intra-run duplicates are caught before anything
// is persisted.
func (t *Tracker) Accept(rec *models.DocumentRecord) Verdict {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.seen[rec.PDFURL]; dup {
		return DuplicateURL
	}
	if t.perBranch > 0 && t.counts[rec.Branch] >= t.perBranch {
		return QuotaReached
	}

	t.seen[rec.PDFURL] = struct{}{}
	t.counts[rec.Branch]++
	return Accepted
}

// KnownURLs reports how many URLs the tracker currently excludes.
func (t *Tracker) KnownURLs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// BranchCounts returns a copy of the per-branch acceptance counters.
func (t *Tracker) BranchCounts() map[models.BranchCode]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[models.BranchCode]int, len(t.counts))
	for b, n := range t.counts {
		out[b] = n
	}
	return out
}
