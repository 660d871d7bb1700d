package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gr_scraper/internal/config"
	"gr_scraper/internal/logging"
	"gr_scraper/internal/models"
	"gr_scraper/internal/storage"
)

const grFormPage = `<html><body><form method="post">
<input type="hidden" name="__VIEWSTATE" value="view-state-token" />
<input type="hidden" name="__EVENTVALIDATION" value="ev-token" />
<select name="ctl08$ddlbranch"><option value="5">K-(Budget)</option></select>
</form></body></html>`

const grFormResults = `<html><body><table>
<tr><td><a href="/Documents/K_310_5-Jun-2022_12.pdf">Appropriation order</a></td></tr>
</table></body></html>`

func TestRunBranches(t *testing.T) {
	t.Parallel()

	var posted atomic.Pointer[url.Values]
	mux := http.NewServeMux()
	mux.HandleFunc("/gr.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			form := r.PostForm
			posted.Store(&form)
			w.Write([]byte(grFormResults))
			return
		}
		w.Write([]byte(grFormPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Branches = []config.BranchOption{
		{Value: "5", Name: "K-(Budget)"},
		{Value: "99", Name: "Unknown Branch"},
	}

	store := storage.NewMemory()
	orch := New(cfg, store, logging.Nop())

	summary, err := orch.Run(context.Background(), Options{Mode: ModeBranches})
	require.NoError(t, err)

	// unknown dropdown names are skipped without a form round-trip
	assert.Equal(t, 1, summary.PagesScanned)
	assert.Equal(t, 1, summary.Accepted)

	form := posted.Load()
	require.NotNil(t, form, "the branch form was never posted")
	assert.Equal(t, "view-state-token", form.Get("__VIEWSTATE"), "hidden state must be echoed back")
	assert.Equal(t, "ev-token", form.Get("__EVENTVALIDATION"))
	assert.Equal(t, "1", form.Get("ctl04$ddllang"))
	assert.Equal(t, "5", form.Get("ctl08$ddlbranch"))
	assert.Equal(t, "ctl08$ddlbranch", form.Get("__EVENTTARGET"))

	docs, err := store.Search(context.Background(), models.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.BranchBudget, docs[0].Branch, "the selected branch overrides classification")
	assert.Equal(t, "K_310_5-Jun-2022_12", docs[0].GRNo)
	assert.Equal(t, "GR Page", docs[0].SourcePage)
}

func TestRunBranchesSkipsSaturated(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(grFormPage))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Logic.BranchSkipAt = 3
	cfg.Branches = []config.BranchOption{{Value: "5", Name: "K-(Budget)"}}

	store := storage.NewMemory()
	for i := 0; i < 3; i++ {
		store.Seed(&models.DocumentRecord{
			GRNo:   "K_old",
			Branch: models.BranchBudget,
			PDFURL: srv.URL + "/old" + string(rune('a'+i)) + ".pdf",
		})
	}

	orch := New(cfg, store, logging.Nop())
	summary, err := orch.Run(context.Background(), Options{Mode: ModeBranches})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.PagesScanned)
	assert.Equal(t, 0, summary.Accepted)
	assert.Equal(t, int32(0), hits.Load(), "a saturated branch must not hit the portal")
}
