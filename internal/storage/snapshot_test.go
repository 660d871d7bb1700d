package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gr_scraper/internal/models"
)

func TestWriteSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	records := []*models.DocumentRecord{
		{GRNo: "M_1_2-Jan-2020_3", Branch: models.BranchPay, PDFURL: "https://a/1.pdf", Subject: "Pay order"},
	}

	name, err := WriteSnapshot(dir, "run-42", records)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(name), "scraped_"), "got %q", name)
	assert.True(t, strings.HasSuffix(name, "_run-42.json"), "got %q", name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var got []*models.DocumentRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "M_1_2-Jan-2020_3", got[0].GRNo)
	assert.Equal(t, models.BranchPay, got[0].Branch)
}

func TestWriteSnapshotCreatesDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "backups")
	_, err := WriteSnapshot(dir, "run-1", nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name, err := WriteReport(dir, "broken_pdfs", map[string]int{"broken_count": 3})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(name), "broken_pdfs_"), "got %q", name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"broken_count": 3`)
}
