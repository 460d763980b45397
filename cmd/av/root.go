package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/auv-sh/avgo/internal/config"
	"github.com/auv-sh/avgo/internal/infra/httpx"
	"github.com/auv-sh/avgo/internal/scrape"
)

// globalFlags 是所有子命令共享的旗标。
type globalFlags struct {
	JSON  bool
	Debug bool
	Uncen bool
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:           "av",
		Short:         "按番号聚合多来源元数据与磁力链接",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&gf.JSON, "json", false, "以 JSON 输出")
	root.PersistentFlags().BoolVar(&gf.Debug, "debug", false, "输出来源降级等诊断日志")
	root.PersistentFlags().BoolVarP(&gf.Uncen, "uncen", "u", false, "只看无码")

	root.AddCommand(
		newDetailCmd(gf),
		newGetCmd(gf),
		newSearchCmd(gf),
		newListCmd(gf),
		newTopCmd(gf),
		newActorsCmd(gf),
		newViewCmd(gf),
	)
	return root
}

// setup 组装配置、日志、HTTP client 与编排引擎。
// 每个子命令在 RunE 里调用它，保证旗标解析完成后才读配置。
func setup(gf *globalFlags) (*scrape.Engine, zerolog.Logger, error) {
	log := newLogger(gf.Debug)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, log, err
	}
	cfg, err := config.LoadEffective(cwd)
	if err != nil {
		return nil, log, err
	}

	client, err := httpx.NewClient(cfg.ProxyURL, cfg.JavDBCookie)
	if err != nil {
		return nil, log, err
	}

	return scrape.Default(cfg, client, log), log, nil
}

// newLogger 输出到 stderr，保证 stdout 只承载结果（JSON 管道友好）。
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
