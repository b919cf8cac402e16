package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/LJTian/MediaBias/internal/analysis"
	"github.com/LJTian/MediaBias/internal/app"
	"github.com/LJTian/MediaBias/internal/config"
	"github.com/LJTian/MediaBias/internal/logger"
)

// 一个仅执行一次分析的命令行入口：适合手动触发或接入外部定时任务
func main() {
	cliApp := &cli.App{
		Name:  "analyze",
		Usage: "summarize news sites and compare their political bias once",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the full result as JSON instead of the markdown report"},
			&cli.StringFlag{Name: "sites-file", Usage: "YAML file with a `sites:` list, overrides SITES"},
			&cli.StringSliceFlag{Name: "site", Usage: "site URL to analyze, repeatable, overrides SITES"},
			&cli.StringFlag{Name: "model", Usage: "model name, overrides LLM_MODEL"},
		},
		Action: analyzeAction,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func analyzeAction(c *cli.Context) error {
	cfg := config.Load()
	if err := applyFlags(c, cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.Build(c.Context, cfg, nil, log)
	if err != nil {
		return err
	}
	res, err := a.Runner.Run(c.Context)
	if err != nil {
		return err
	}
	log.Info("analysis done", zap.String("run_id", res.ID), zap.String("outcome", res.Outcome))
	return printResult(c.App.Writer, res, c.Bool("json"))
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if path := c.String("sites-file"); path != "" {
		sites, err := config.LoadSitesFile(path)
		if err != nil {
			return fmt.Errorf("load sites file: %w", err)
		}
		cfg.Sites = sites
	}
	if sites := c.StringSlice("site"); len(sites) > 0 {
		cfg.Sites = sites
	}
	if m := c.String("model"); m != "" {
		cfg.Model = m
	}
	if len(cfg.Sites) == 0 {
		return fmt.Errorf("no sites to analyze")
	}
	return nil
}

func printResult(w io.Writer, res *analysis.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	}

	var b strings.Builder
	for _, s := range res.Summaries {
		fmt.Fprintf(&b, "Summary for %s:\n%s\n\n", s.URL, s.JSON())
	}
	b.WriteString("## Bias Analysis\n\n")
	b.WriteString(res.Report)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
