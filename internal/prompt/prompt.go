// Package prompt 保存两次模型调用使用的固定提示词
package prompt

import (
	"strings"

	"github.com/LJTian/MediaBias/internal/llm"
)

const SummarySystem = `You are a news summarizer. Your task is to:
1. Read the provided website content
2. Identify and summarize the main news stories
3. Present the summaries in a structured JSON format
4. Ignore any website navigation, ads, or non-news content

Format your response as a JSON array of objects, where each object has the following structure:
{
    "title": "Brief headline of the story",
    "description": "1-2 sentence summary of the story",
    "media_outlet": "Name of the news source"
}

CRITICAL INSTRUCTIONS:
- Your response should ONLY contain the JSON array
- DO NOT include any thinking process, analysis, or internal monologue
- DO NOT use <think> tags or any other markers
- DO NOT explain your reasoning or approach
- DO NOT include any text that isn't part of the JSON structure
- Start directly with the JSON array`

const summaryReminder = "\n\nIMPORTANT: Provide ONLY a JSON array of story summaries. Do not include any thinking process, analysis, or explanations."

const BiasSystem = `You are an expert media analyst specializing in political bias detection. Your task is to provide an objective, evidence-based analysis of news coverage.

CRITICAL INSTRUCTIONS:
- Provide ONLY the analysis of political bias
- DO NOT include any thinking process or internal monologue
- DO NOT use <think> tags or any other markers
- DO NOT explain your reasoning or approach
- Focus on concrete examples from the content
- Start directly with the analysis`

const biasIntro = `Please analyze the following news summaries and provide a detailed comparison of their political bias. Focus on:

1. Story Selection: What types of stories are covered or emphasized?
2. Language and Tone: How are stories presented? Look for loaded words or emotional language.
3. Source Attribution: How are sources and quotes used?
4. Story Framing: How are issues and events contextualized?
5. Overall Bias Assessment: Provide a balanced analysis of any apparent political leanings.

Here are the summaries to analyze:

`

// SiteSummary 是一个站点的摘要 JSON 文本，带上来源 URL 作为分组标题
type SiteSummary struct {
	URL  string
	JSON string
}

func SummaryUser(title, body string) string {
	var b strings.Builder
	b.WriteString("Here is the content from ")
	b.WriteString(title)
	b.WriteString(". Please summarize the main news stories:\n\n")
	b.WriteString(body)
	b.WriteString(summaryReminder)
	return b.String()
}

func SummaryMessages(title, body string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SummarySystem},
		{Role: llm.RoleUser, Content: SummaryUser(title, body)},
	}
}

// BiasUser 每个站点一段 "Summary for <url>:\n<json>"，段与段之间用单个换行连接
func BiasUser(summaries []SiteSummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, s := range summaries {
		blocks = append(blocks, "Summary for "+s.URL+":\n"+s.JSON)
	}
	return biasIntro + strings.Join(blocks, "\n")
}

func BiasMessages(summaries []SiteSummary) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: BiasSystem},
		{Role: llm.RoleUser, Content: BiasUser(summaries)},
	}
}
