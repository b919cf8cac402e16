package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSites 是参考部署中分析的三个新闻站点，顺序即最终偏见报告中的分组顺序
var DefaultSites = []string{
	"https://www.alternet.org",
	"https://drudgereport.com",
	"https://apnews.com",
}

const (
	DefaultModel       = "gemma3:4b"
	DefaultTemperature = 0.1
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"
)

type Config struct {
	AppPort string

	// 分析流水线
	Sites       []string
	Model       string
	Temperature float64

	// 模型服务
	LLMProvider     string
	OllamaHost      string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	PullOnStart     bool

	// 页面渲染与正文提取
	BrowserScraperURL string
	UserAgent         string
	RenderWait        time.Duration
	RenderTimeout     time.Duration
	ArticleTimeout    time.Duration

	// 可选的报告缓存与历史记录，留空即关闭
	RedisAddr   string
	PostgresDSN string

	// 可选的定时分析，留空即只能手动触发
	CronSpec string

	BasicAuthUser string
	BasicAuthPass string

	LogLevel string
	LogDev   bool

	// Warnings 记录加载时被忽略的非法取值，由调用方在日志初始化后输出
	Warnings []string
}

func Load() *Config {
	// .env 不存在是常态，忽略错误
	_ = godotenv.Load()

	var warns warnings
	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "9000"),
		Sites:             getList("SITES", DefaultSites),
		Model:             getEnv("LLM_MODEL", DefaultModel),
		Temperature:       warns.getFloat("LLM_TEMPERATURE", DefaultTemperature),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		PullOnStart:       warns.getBool("LLM_PULL_ON_START", true),
		BrowserScraperURL: getEnv("BROWSER_SCRAPER_URL", ""),
		UserAgent:         getEnv("USER_AGENT", DefaultUserAgent),
		RenderWait:        warns.getDuration("RENDER_WAIT", 5*time.Second),
		RenderTimeout:     warns.getDuration("RENDER_TIMEOUT", 60*time.Second),
		ArticleTimeout:    warns.getDuration("ARTICLE_TIMEOUT", 30*time.Second),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		CronSpec:          getEnv("ANALYSIS_CRON", ""),
		BasicAuthUser:     getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:     getEnv("APP_BASIC_PASS", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogDev:            warns.getBool("LOG_DEV", false),
	}

	// SITES_FILE 优先于 SITES，读取失败时保留已有站点列表
	if path := getEnv("SITES_FILE", ""); path != "" {
		sites, err := LoadSitesFile(path)
		if err != nil {
			warns.add("load sites file %s: %v", path, err)
		} else if len(sites) > 0 {
			cfg.Sites = sites
		}
	}

	cfg.Warnings = warns
	return cfg
}

type sitesFile struct {
	Sites []string `yaml:"sites"`
}

// LoadSitesFile 读取形如 `sites: [url, ...]` 的 YAML 文件
func LoadSitesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sites file: %w", err)
	}
	return cleanList(f.Sites), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), def...)
	}
	out := cleanList(strings.Split(v, ","))
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type warnings []string

func (w *warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func (w *warnings) getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		w.add("invalid %s=%q, using %v", key, v, def)
		return def
	}
	return f
}

func (w *warnings) getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		w.add("invalid %s=%q, using %v", key, v, def)
		return def
	}
	return b
}

func (w *warnings) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		w.add("invalid %s=%q, using %v", key, v, def)
		return def
	}
	return d
}
