package extractor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	NoTitle   = "No title found"
	NoContent = "No content found"

	// 只保留长度大于该值的行，用来过滤导航标签等短文本
	minLineLength = 20
)

// contentSelectors 按优先级排列，命中第一个即作为正文容器
var contentSelectors = []string{
	"main",
	"article",
	`[class*="content"]`,
	`[class*="main"]`,
	`[class*="article"]`,
	`[class*="story"]`,
}

const nonContentSelectors = "nav, header, footer, aside, script, style"

// DOMStrategy 在已渲染的 HTML 上用选择器定位正文容器
type DOMStrategy struct{}

func (DOMStrategy) Name() string {
	return "dom"
}

func (DOMStrategy) Extract(_ context.Context, page *RenderedPage) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return bodyText(doc), nil
}

// PageTitle 返回 <title> 文本，没有时返回占位标题
func PageTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return NoTitle
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return NoTitle
}

func bodyText(doc *goquery.Document) string {
	container := findContainer(doc)
	if container == nil {
		return NoContent
	}
	container.Find(nonContentSelectors).Remove()
	return filterLines(nodeText(container), minLineLength)
}

func findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return nil
}

// nodeText 逐个收集文本节点（去首尾空白、跳过空节点），用换行连接，
// 避免相邻行内元素的文字被拼成一行
func nodeText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

// filterLines 按行切分，只保留字符数严格大于 minLen 的行
func filterLines(text string, minLen int) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > minLen {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
