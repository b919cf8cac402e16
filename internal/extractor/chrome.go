package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer 每次调用都启动独立的 headless Chrome，返回前关闭
type ChromeRenderer struct {
	UserAgent string
	// Wait 是导航完成后的固定等待，给动态内容留出加载时间
	Wait    time.Duration
	Timeout time.Duration
}

// ChromeOptions 返回启动浏览器的参数：无头、关闭沙箱、伪装桌面 UA
func ChromeOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	return opts
}

func (r *ChromeRenderer) Render(ctx context.Context, url string) (*RenderedPage, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, ChromeOptions(r.UserAgent)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
		defer cancel()
	}

	var html string
	if err := chromedp.Run(browserCtx, RenderActions(url, r.Wait, &html)...); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	return &RenderedPage{URL: url, HTML: html}, nil
}

// RenderActions 打开页面、固定等待后抓取整个文档的 HTML；cmd/browser-scraper 复用同一组动作
func RenderActions(url string, wait time.Duration, html *string) []chromedp.Action {
	return []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.Sleep(wait),
		chromedp.OuterHTML("html", html, chromedp.ByQuery),
	}
}
