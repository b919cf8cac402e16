package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/analysis"
)

//go:embed templates/*.html
var templatesFS embed.FS

// AnalysisRunner 由 *analysis.Runner 实现
type AnalysisRunner interface {
	Run(ctx context.Context) (*analysis.Result, error)
	Running() bool
	Latest(ctx context.Context) (*analysis.Result, error)
	History(ctx context.Context, limit int) ([]analysis.Result, error)
}

type Server struct {
	runner   AnalysisRunner
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	sites    []string
}

// NewServer 中 gatherer 为 nil 时不注册 /metrics
func NewServer(runner AnalysisRunner, sites []string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runner: runner, sites: sites, gatherer: gatherer, logger: logger}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/health", s.health)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/", s.index)
	r.POST("/run", s.runFromPage)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/analysis", s.runAnalysis)
		v1.GET("/analysis/latest", s.latestAnalysis)
		v1.GET("/analysis/history", s.analysisHistory)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": s.runner.Running()})
}

// pageData 是首页模板的输入
type pageData struct {
	Sites      []string
	Result     *analysis.Result
	ReportHTML template.HTML
	Running    bool
	Notice     string
}

func (s *Server) renderPage(c *gin.Context, status int, res *analysis.Result, notice string) {
	data := pageData{
		Sites:   s.sites,
		Result:  res,
		Running: s.runner.Running(),
		Notice:  notice,
	}
	if res != nil {
		data.ReportHTML = renderMarkdown(res.Report)
	}
	c.HTML(status, "index.html", data)
}

func (s *Server) index(c *gin.Context) {
	res, err := s.runner.Latest(c.Request.Context())
	if err != nil && !errors.Is(err, analysis.ErrNoReport) {
		s.logger.Warn("load latest report failed", zap.Error(err))
	}
	s.renderPage(c, http.StatusOK, res, "")
}

// runContext 保留请求上下文中的值，但客户端断开不会中断已经开始的分析
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// runFromPage 同步执行一次分析，完成后直接渲染结果页
func (s *Server) runFromPage(c *gin.Context) {
	res, err := s.runner.Run(runContext(c))
	if errors.Is(err, analysis.ErrBusy) {
		latest, _ := s.runner.Latest(c.Request.Context())
		s.renderPage(c, http.StatusConflict, latest, "An analysis is already running. Please wait for it to finish.")
		return
	}
	if err != nil {
		_ = c.Error(err)
		s.renderPage(c, http.StatusInternalServerError, nil, "Analysis could not be started.")
		return
	}
	s.renderPage(c, http.StatusOK, res, "")
}

func (s *Server) runAnalysis(c *gin.Context) {
	res, err := s.runner.Run(runContext(c))
	if errors.Is(err, analysis.ErrBusy) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "busy",
			"message": "analysis already running",
		})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    res,
	})
}

func (s *Server) latestAnalysis(c *gin.Context) {
	res, err := s.runner.Latest(c.Request.Context())
	if errors.Is(err, analysis.ErrNoReport) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no analysis has been run yet",
		})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    res,
	})
}

func (s *Server) analysisHistory(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := s.runner.History(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}
