package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storySentence = "The city council voted on Tuesday to expand the public transit network across the northern districts."

func articleHTML() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Transit expansion approved</title></head><body>`)
	b.WriteString(`<nav><a href="/">Home</a><a href="/politics">Politics</a></nav>`)
	b.WriteString(`<article><h1>Transit expansion approved</h1>`)
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "<p>%s Officials said paragraph %d describes funding, timelines, and the reaction of residents who have waited years for better service, along with commentary from local business owners.</p>", storySentence, i)
	}
	b.WriteString(`</article><footer>Copyright</footer></body></html>`)
	return b.String()
}

func TestArticleStrategyDownloadsAndParses(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML()))
	}))
	defer srv.Close()

	s := &ArticleStrategy{UserAgent: "test-agent/1.0", Timeout: 5 * time.Second}
	// 渲染结果中的 HTML 被忽略，只使用 URL
	text, err := s.Extract(context.Background(), &RenderedPage{URL: srv.URL + "/story", HTML: "<html></html>"})
	require.NoError(t, err)
	assert.Contains(t, text, storySentence)
	assert.NotContains(t, text, "Politics")
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestArticleStrategyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := &ArticleStrategy{Timeout: 5 * time.Second}
	_, err := s.Extract(context.Background(), &RenderedPage{URL: srv.URL})
	assert.Error(t, err)
}

func TestArticleStrategyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &ArticleStrategy{}
	_, err := s.Extract(ctx, &RenderedPage{URL: "https://example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
