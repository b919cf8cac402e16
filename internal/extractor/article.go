package extractor

import (
	"bytes"
	"context"
	"fmt"
	nurl "net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

// ArticleStrategy 不使用浏览器渲染结果，而是按 URL 重新下载页面，
// 再交给 readability 做通用的正文识别；有结果时覆盖 DOM 策略的输出
type ArticleStrategy struct {
	UserAgent string
	Timeout   time.Duration
}

func (s *ArticleStrategy) Name() string {
	return "article"
}

func (s *ArticleStrategy) Extract(ctx context.Context, page *RenderedPage) (string, error) {
	parsed, err := nurl.Parse(page.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	body, err := s.download(ctx, page.URL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

func (s *ArticleStrategy) download(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector()
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.Timeout > 0 {
		c.SetRequestTimeout(s.Timeout)
	}

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("download %s: %w", url, fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("download %s: empty body", url)
	}
	return body, nil
}
