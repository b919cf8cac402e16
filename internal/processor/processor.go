package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoJSONArray = errors.New("no json array in model output")
	ErrMalformed   = errors.New("malformed story json")
)

// StoryRecord 是模型从站点内容中归纳出的一条新闻
type StoryRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaOutlet string `json:"media_outlet"`
}

// SummarySet 是一个站点的去重后新闻列表
type SummarySet struct {
	URL     string        `json:"url"`
	Stories []StoryRecord `json:"stories"`
}

func (s SummarySet) Empty() bool {
	return len(s.Stories) == 0
}

// JSON 返回 2 空格缩进的数组文本，用于拼进偏见分析提示词；空集合为 "[]"
func (s SummarySet) JSON() string {
	if len(s.Stories) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Stories); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ExtractJSONArray 取第一个 '[' 到最后一个 ']'（含）之间的子串，
// 容忍模型在 JSON 前后输出的多余文字；找不到成对括号时返回 false
func ExtractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// fieldText 把任意 JSON 值转成字符串：字符串取原文，null 为空，数字、布尔等保留字面量
func fieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// ParseStories 解析模型输出并按标题去重。
// 只有 JSON 本身不合法、元素不是对象或缺少 title 键才算 ErrMalformed，字段类型不做要求
func ParseStories(output string) ([]StoryRecord, error) {
	payload, ok := ExtractJSONArray(output)
	if !ok {
		return nil, ErrNoJSONArray
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	stories := make([]StoryRecord, 0, len(raw))
	for i, r := range raw {
		title, ok := r["title"]
		if !ok {
			return nil, fmt.Errorf("%w: story %d has no title", ErrMalformed, i)
		}
		stories = append(stories, StoryRecord{
			Title:       fieldText(title),
			Description: fieldText(r["description"]),
			MediaOutlet: fieldText(r["media_outlet"]),
		})
	}
	return Dedupe(stories), nil
}

// Dedupe 按标题精确去重，保留第一次出现的记录及原有顺序
func Dedupe(stories []StoryRecord) []StoryRecord {
	out := make([]StoryRecord, 0, len(stories))
	seen := make(map[string]struct{}, len(stories))

	for _, s := range stories {
		if _, ok := seen[s.Title]; ok {
			continue
		}
		seen[s.Title] = struct{}{}
		out = append(out, s)
	}
	return out
}
