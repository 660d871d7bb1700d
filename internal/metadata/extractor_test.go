package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gr_scraper/internal/models"
)

// fixedNow pins the date fallback so estimated dates are assertable.
var fixedNow = func() time.Time {
	return time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		link          models.PDFLink
		wantGRNo      string
		wantDate      string
		wantEstimated bool
	}{
		{
			name: "gujarati identifier in text",
			link: models.PDFLink{
				Text: "પગર/102/2023-A મોંઘવારી ભથ્થા અંગે",
				URL:  "https://example.gov.in/documents/view.aspx?id=9",
			},
			wantGRNo:      "પગર/102/2023-A",
			wantDate:      "2023-05-01",
			wantEstimated: true,
		},
		{
			name: "english gr identifier in text",
			link: models.PDFLink{
				Text: "Resolution GR-1022-2023-B dated 15/03/2022",
				URL:  "https://example.gov.in/documents/view.aspx?id=10",
			},
			wantGRNo: "GR-1022-2023-B",
			wantDate: "15/03/2022",
		},
		{
			name: "dashed identifier in context",
			link: models.PDFLink{
				Text:    "Download",
				Context: "Order No pnk-102-2023-b regarding daily wages",
				URL:     "https://example.gov.in/documents/order.aspx",
			},
			wantGRNo:      "pnk-102-2023-b",
			wantDate:      "2023-05-01",
			wantEstimated: true,
		},
		{
			name: "underscore identifier in text",
			link: models.PDFLink{
				Text: "See CIR_22_15-Jun-2021_330 for details",
				URL:  "https://example.gov.in/documents/c.aspx",
			},
			wantGRNo: "CIR_22_15-Jun-2021_330",
			wantDate: "15-Jun-2021",
		},
		{
			name: "filename fallback with embedded date",
			link: models.PDFLink{
				Text: "View",
				URL:  "https://financedepartment.gujarat.gov.in/Documents/Cir_2_2016-11-9_814.PDF",
			},
			wantGRNo: "Cir_2_2016-11-9_814",
			wantDate: "2016-11-9",
		},
		{
			name: "filename fallback with day-mon-year date",
			link: models.PDFLink{
				Text: "Pay scale revision for government employees",
				URL:  "https://financedepartment.gujarat.gov.in/Documents/M_2641_17-Apr-2023_450.pdf",
			},
			wantGRNo: "M_2641_17-Apr-2023_450",
			wantDate: "17-Apr-2023",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := &Extractor{Now: fixedNow}
			meta := e.Extract(tc.link)

			assert.Equal(t, tc.wantGRNo, meta.GRNo)
			assert.Equal(t, tc.wantDate, meta.Date)
			assert.Equal(t, tc.wantEstimated, meta.DateEstimated)
			assert.NotEmpty(t, meta.Subject)
		})
	}
}

func TestExtractSyntheticIdentifier(t *testing.T) {
	t.Parallel()

	e := &Extractor{Now: fixedNow}
	link := models.PDFLink{
		Text: "Download",
		URL:  "https://example.gov.in/files/circular/view.pdf",
	}

	first := e.Extract(link)
	second := e.Extract(link)

	// Same URL, same identifier, in this process and the next one.
	assert.Equal(t, first.GRNo, second.GRNo)
	assert.True(t, strings.HasPrefix(first.GRNo, "Cir_"), "got %q", first.GRNo)
	assert.NotEqual(t, "Cir_", first.GRNo)

	other := e.Extract(models.PDFLink{URL: "https://example.gov.in/files/circular/other.pdf"})
	assert.NotEqual(t, first.GRNo, other.GRNo)
}

func TestExtractSyntheticTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.gov.in/circular/x.pdf", "Cir_"},
		{"https://example.gov.in/gresolution/x.pdf", "GR_"},
		{"https://example.gov.in/rulebook/x.pdf", "Rule_"},
		{"https://example.gov.in/notification/x.pdf", "Not_"},
		{"https://example.net/files/x.pdf", "DOC_"},
	}

	for _, tc := range tests {
		got := syntheticGRNo(tc.url)
		assert.True(t, strings.HasPrefix(got, tc.want), "url %s: got %q, want prefix %q", tc.url, got, tc.want)
	}
}

func TestMatchGRNeverMatchesEmptyText(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "View all documents here"} {
		_, ok := matchGR(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestMatchDateFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"issued on 17-Apr-2023 by the department", "17-Apr-2023", true},
		{"circular dated 15/03/2022", "15/03/2022", true},
		{"publication 2016-11-9 archive", "2016-11-9", true},
		{"no date in here", "", false},
	}

	for _, tc := range tests {
		got, ok := matchDate(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	t.Run("text wins over context", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Pay order", Subject("  Pay order  ", "something else", ""))
	})

	t.Run("context fills in for empty text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "surrounding row text", Subject("", " surrounding row text ", ""))
	})

	t.Run("placeholder fills in for both empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "K-(Budget) Document", Subject("", "", "K-(Budget)"))
		assert.Equal(t, "Government Document", Subject("", "", ""))
	})

	t.Run("long subjects are truncated", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("x", models.MaxSubjectLen+50)
		got := Subject(long, "", "")
		assert.Len(t, []rune(got), models.MaxSubjectLen+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}

func TestWithPlaceholder(t *testing.T) {
	t.Parallel()

	e := &Extractor{Now: fixedNow}
	link := models.PDFLink{URL: "https://example.gov.in/Documents/M_1_2-Jan-2020_3.pdf"}

	meta := e.Extract(link)
	assert.Equal(t, "Government Document", meta.Subject)

	meta = e.WithPlaceholder(meta, link, string(models.BranchPay))
	assert.Equal(t, "M-(Pay of Government Employee) Document", meta.Subject)
}
