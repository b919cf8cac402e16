// Package extractor 渲染新闻站点首页并提取标题与正文纯文本
package extractor

import "context"

// ExtractedPage 是一次提取的结果，只在一次摘要调用内使用
type ExtractedPage struct {
	URL   string
	Title string
	Body  string
}

// RenderedPage 是浏览器执行完脚本后的完整 HTML
type RenderedPage struct {
	URL  string
	HTML string
}

// Renderer 抽象无头浏览器：给定 URL，返回渲染后的 HTML。
// 实现必须在返回前释放本次使用的浏览器会话。
type Renderer interface {
	Render(ctx context.Context, url string) (*RenderedPage, error)
}

// Strategy 是一种正文提取策略，返回空字符串表示没有结果
type Strategy interface {
	Name() string
	Extract(ctx context.Context, page *RenderedPage) (string, error)
}
