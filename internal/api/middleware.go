package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BasicAuth 用一组固定账号保护页面、分析接口和 /metrics。
// /health 以及 open 中列出的路径免认证，便于探活。
func BasicAuth(user, pass string, open ...string) gin.HandlerFunc {
	challenge := `Basic realm="MediaBias", charset="UTF-8"`
	want := []byte(user + ":" + pass)
	exempt := map[string]struct{}{"/health": {}}
	for _, p := range open {
		exempt[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if ok && subtle.ConstantTimeCompare([]byte(u+":"+p), want) == 1 {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", challenge)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "unauthorized",
			"message": "authentication required",
		})
	}
}

// RequestLogger 每个请求一条 zap 日志，替代 gin 自带的文本日志
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case strings.HasPrefix(path, "/health"), path == "/metrics":
			logger.Debug("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}
