package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const remoteMaxResponseBytes = 16 << 20 // 16MB

// RenderRequest / RenderResponse 是 browser-scraper 服务 /render 接口的报文
type RenderRequest struct {
	URL    string `json:"url"`
	WaitMs int64  `json:"waitMs"`
}

type RenderResponse struct {
	OK    bool   `json:"ok"`
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// RemoteRenderer 通过独立部署的 browser-scraper 渲染页面，Chrome 跑在另一个容器里
type RemoteRenderer struct {
	BaseURL string
	Wait    time.Duration
	Client  *http.Client
}

func NewRemoteRenderer(baseURL string, wait, timeout time.Duration) *RemoteRenderer {
	return &RemoteRenderer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Wait:    wait,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (r *RemoteRenderer) Render(ctx context.Context, url string) (*RenderedPage, error) {
	payload, err := json.Marshal(RenderRequest{URL: url, WaitMs: r.Wait.Milliseconds()})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("browser-scraper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browser-scraper: %w", err)
	}
	defer resp.Body.Close()

	var out RenderResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, remoteMaxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("browser-scraper: status %d: decode: %w", resp.StatusCode, err)
	}
	if !out.OK {
		if out.Error == "" {
			out.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("browser-scraper: %s", out.Error)
	}
	return &RenderedPage{URL: url, HTML: out.HTML}, nil
}
