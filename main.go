package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/textstamp/config"
	"github.com/ByLCY/textstamp/dsl"
	"github.com/ByLCY/textstamp/fonts"
	"github.com/ByLCY/textstamp/layout"
	"github.com/ByLCY/textstamp/overlay"
	"github.com/ByLCY/textstamp/server"
)

func main() {
	var verbose bool
	var configPath string
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "textstamp",
		Short:         "textstamp - 在图片上居中叠加多行文字",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			level := cfg.LogLevel()
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "textstamp.toml", "TOML 配置文件路径")

	cmd.AddCommand(renderCommand(&cfg), serveCommand(&cfg), fontsCommand())

	if err := cmd.Execute(); err != nil {
		slog.Error("error", "err", err)
		os.Exit(1)
	}
}

func renderCommand(cfg **config.Config) *cobra.Command {
	var (
		templatePath string
		dataJSON     string
		outputPath   string
		format       string
		debugPath    string
		dropMissing  bool
	)
	c := &cobra.Command{
		Use:   "render",
		Short: "按模板合成一张图片",
		RunE: func(c *cobra.Command, args []string) error {
			conf := *cfg
			if format != "" {
				conf.Render.Format = format
				if err := conf.Validate(); err != nil {
					return err
				}
			}
			var data any
			if dataJSON != "" {
				if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
					return fmt.Errorf("解析 data JSON 失败: %w", err)
				}
			}
			if err := run(conf, templatePath, outputPath, debugPath, data, dropMissing); err != nil {
				return fmt.Errorf("生成图片失败: %w", err)
			}
			fmt.Printf("已生成：%s\n", outputPath)
			return nil
		},
	}
	c.Flags().StringVarP(&templatePath, "template", "t", "flyer.stamp", "模板文件路径")
	c.Flags().StringVarP(&dataJSON, "data", "d", "", "绑定到模板的 JSON 数据")
	c.Flags().StringVarP(&outputPath, "out", "o", "output.png", "输出文件路径")
	c.Flags().StringVarP(&format, "format", "f", "", "输出格式 png|pdf，默认取配置文件")
	c.Flags().StringVar(&debugPath, "debug", "", "调试 JSON 输出路径")
	c.Flags().BoolVar(&dropMissing, "drop-missing", true, "数据中缺失的字段替换为空串")
	return c
}

func serveCommand(cfg **config.Config) *cobra.Command {
	var addr string
	var templatePath string
	c := &cobra.Command{
		Use:   "serve",
		Short: "启动表单页与图片下载服务",
		RunE: func(c *cobra.Command, args []string) error {
			conf := *cfg
			if addr != "" {
				conf.Server.Addr = addr
			}
			if templatePath != "" {
				conf.Server.Template = templatePath
			}
			doc, err := parseTemplate(conf.Server.Template)
			if err != nil {
				return err
			}
			h, err := server.NewHandler(doc, filepath.Dir(conf.Server.Template), conf, slog.Default())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return server.New(server.Config{Addr: conf.Server.Addr, Handler: h}).Run(ctx)
		},
	}
	c.Flags().StringVarP(&addr, "addr", "a", "", "监听地址，默认取配置文件")
	c.Flags().StringVarP(&templatePath, "template", "t", "", "模板文件路径，默认取配置文件")
	return c
}

func fontsCommand() *cobra.Command {
	var dirs []string
	c := &cobra.Command{
		Use:   "fonts [family]",
		Short: "列出内置字体与系统字体目录，或按家族名查找系统字体",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 1 {
				var path string
				var err error
				if len(dirs) > 0 {
					path, err = fonts.FindIn(dirs, args[0])
				} else {
					path, err = fonts.FindSystem(args[0])
				}
				if err != nil {
					return err
				}
				fmt.Printf("system:%s => %s\n", args[0], path)
				return nil
			}
			for _, name := range fonts.Embedded() {
				fmt.Printf("embed:%s\n", name)
			}
			if len(dirs) == 0 {
				dirs = fonts.SearchDirs()
			}
			for _, dir := range dirs {
				fmt.Printf("system dir: %s\n", dir)
			}
			return nil
		},
	}
	c.Flags().StringSliceVar(&dirs, "dir", nil, "只在这些目录中查找，默认使用系统字体目录")
	return c
}

// run 串联解析、绑定、合成与输出。
func run(cfg *config.Config, templatePath, outputPath, debugPath string, data any, dropMissing bool) error {
	doc, err := parseTemplate(templatePath)
	if err != nil {
		return err
	}
	baseDir, err := filepath.Abs(filepath.Dir(templatePath))
	if err != nil {
		return fmt.Errorf("解析模板目录失败: %w", err)
	}

	result, err := layout.Build(doc, data, layout.BuildOptions{
		BaseDir:     baseDir,
		DropMissing: dropMissing,
		Debug:       layout.DebugOptions{RawLines: debugPath != ""},
	})
	if err != nil {
		return fmt.Errorf("模板绑定失败: %w", err)
	}

	opts := cfg.EngineOptions(baseDir, slog.Default())
	if fb := result.Fallbacks(); fb != nil {
		opts.Fallbacks = fb
	}
	opts.Encoder = cfg.Encoder(result.Meta.PDF())
	engine := overlay.NewEngine(opts)

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	plan, err := engine.ComposeTo(file, result.Job())
	if err != nil {
		file.Close()
		os.Remove(outputPath)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("写出图像失败: %w", err)
	}
	if debugPath != "" {
		return writeDebug(result, plan, debugPath)
	}
	return nil
}

func parseTemplate(path string) (*dsl.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()
	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return doc, nil
}

func writeDebug(result *layout.Result, plan *overlay.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, plan, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
