package api

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// 模型输出不可信，渲染后的 HTML 必须先过滤再放进页面
var reportPolicy = bluemonday.UGCPolicy()

// renderMarkdown 把模型给出的 markdown 报告转成可直接嵌入模板的安全 HTML
func renderMarkdown(md string) template.HTML {
	unsafe := blackfriday.Run([]byte(md))
	return template.HTML(reportPolicy.SanitizeBytes(unsafe))
}
