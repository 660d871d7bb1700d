package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gr_scraper/internal/models"
)

// WriteSnapshot dumps the run's accepted records to a timestamped JSON file
// under dir. The snapshot is written before the primary storage insert is
// attempted, so a storage outage after a successful scrape loses nothing.
func WriteSnapshot(dir, runID string, records []*models.DocumentRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	stamp := time.Now().Format("20060102_150405")
	name := filepath.Join(dir, fmt.Sprintf("scraped_%s_%s.json", stamp, runID))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// WriteReport writes an arbitrary JSON report (verification summaries, run
// summaries) next to the snapshots.
func WriteReport(dir, prefix string, payload interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	stamp := time.Now().Format("20060102_150405")
	name := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, stamp))

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
