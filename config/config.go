package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/textstamp/fonts"
	"github.com/ByLCY/textstamp/overlay"
	"github.com/ByLCY/textstamp/renderer"
	canvasrenderer "github.com/ByLCY/textstamp/renderer/canvas"
)

// 支持的输出格式。
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

type ServerConfig struct {
	Addr         string `toml:"addr"`
	Template     string `toml:"template"`
	DownloadName string `toml:"download_name"`
}

type RenderConfig struct {
	VerticalBias int      `toml:"vertical_bias"`
	LineSpacing  int      `toml:"line_spacing"`
	Fallbacks    []string `toml:"fallbacks"`
	Format       string   `toml:"format"`
	// DPI 仅对 pdf 输出生效，决定页面的物理尺寸。
	DPI float64 `toml:"dpi"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// Default 返回内置默认配置。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			Template:     "flyer.stamp",
			DownloadName: "output.png",
		},
		Render: RenderConfig{
			VerticalBias: overlay.DefaultVerticalBias,
			LineSpacing:  overlay.DefaultLineSpacing,
			Fallbacks:    []string{"system:Arial"},
			Format:       FormatPNG,
			DPI:          canvasrenderer.DefaultDPI,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load 读取 TOML 配置文件，文件不存在时返回默认配置；未填写的字段沿用默认值。
func Load(path string) (*Config, error) {
	out := Default()
	if path == "" {
		return out, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return out, nil
	}
	if _, err := toml.DecodeFile(path, out); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}
	return out, nil
}

// Validate 检查取值范围。
func (c *Config) Validate() error {
	switch strings.ToLower(c.Render.Format) {
	case FormatPNG, FormatPDF:
	default:
		return fmt.Errorf("不支持的输出格式 %q", c.Render.Format)
	}
	if c.Render.LineSpacing < 0 {
		return fmt.Errorf("line_spacing 不能为负数: %d", c.Render.LineSpacing)
	}
	if c.Render.DPI < 0 {
		return fmt.Errorf("dpi 不能为负数: %v", c.Render.DPI)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LogLevel 返回 slog 日志级别，无法识别时为 Info。
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Encoder 按 format 返回输出编码器；meta 只在 pdf 输出时写入文档属性。
func (c *Config) Encoder(meta canvasrenderer.Meta) renderer.Encoder {
	if strings.EqualFold(c.Render.Format, FormatPDF) {
		return canvasrenderer.PDF{DPI: c.Render.DPI, Meta: meta}
	}
	return renderer.PNG{}
}

// EngineOptions 将配置转换为引擎参数。baseDir 用于解析相对字体路径。
func (c *Config) EngineOptions(baseDir string, logger *slog.Logger) overlay.Options {
	opts := overlay.DefaultOptions()
	opts.VerticalBias = c.Render.VerticalBias
	opts.LineSpacing = c.Render.LineSpacing
	opts.BaseDir = baseDir
	opts.Logger = logger
	opts.Encoder = c.Encoder(canvasrenderer.Meta{})
	if c.Render.Fallbacks != nil {
		opts.Fallbacks = Resources(c.Render.Fallbacks)
	}
	return opts
}

// Resources 将字体源字符串转换为字体资源。
func Resources(srcs []string) []fonts.Resource {
	out := make([]fonts.Resource, 0, len(srcs))
	for _, src := range srcs {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		out = append(out, fonts.Resource{Src: src})
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("无法识别的日志级别 %q", s)
	}
	return level, nil
}
