package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHeaders(t *testing.T) {
	t.Parallel()

	var gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient("portal-agent/1.0", 5*time.Second)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "portal-agent/1.0", gotAgent)
	assert.Contains(t, gotAccept, "text/html")
}

func TestClientPostForm(t *testing.T) {
	t.Parallel()

	var gotBranch, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBranch = r.PostFormValue("ctl08$ddlbranch")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("ctl08$ddlbranch", "5")

	c := NewClient("agent", 5*time.Second)
	resp, err := c.PostForm(context.Background(), srv.URL, form)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "5", gotBranch)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
}

func TestGetHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body>પગાર</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("agent", 5*time.Second)

	html, err := c.GetHTML(context.Background(), srv.URL+"/page.html")
	require.NoError(t, err)
	assert.Contains(t, html, "પગાર")

	_, err = c.GetHTML(context.Background(), srv.URL+"/missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClientRedirectCap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// every path redirects to a deeper one, forever
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	c := NewClient("agent", 10*time.Second)
	resp, err := c.Get(context.Background(), srv.URL+"/a")
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 15 redirects")
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	got, err := DecodeBody(strings.NewReader("plain text"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "plain text", got)
}
