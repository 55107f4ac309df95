package overlay

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/ByLCY/textstamp/fonts"
)

// Font 是解析后可直接绘制的字体面。每次调用解析一次，绘制完成后关闭。
type Font struct {
	Face   font.Face
	Source string
	Size   float64
	// Degraded 表示使用了内置基线字体，实际字号与请求字号无关。
	Degraded bool
}

// Close 释放字体面占用的资源。
func (f *Font) Close() error {
	if f == nil || f.Face == nil {
		return nil
	}
	if closer, ok := f.Face.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Resolver 按"自定义字体 → 后备字体列表 → 基线字体"的顺序获取字体。
type Resolver struct {
	Fallbacks []fonts.Resource
	Baseline  font.Face
	BaseDir   string
	Logger    *slog.Logger
}

// Resolve 返回请求字号下的字体面。
//
// 指定了 custom 时，custom 与所有后备字体都失败会返回 ErrFontLoad；
// 未指定 custom 时，后备字体全部失败会静默退回基线字体。
func (r *Resolver) Resolve(custom string, size float64) (*Font, error) {
	if !validSize(size) {
		return nil, fmt.Errorf("字号必须为有限正数: %g", size)
	}
	log := r.logger()

	if custom != "" {
		f, err := r.open(fonts.Resource{Src: custom}, size)
		if err == nil {
			return f, nil
		}
		log.Warn("无法加载自定义字体，尝试后备字体", "font", custom, "error", err)
		if f, ok := r.tryFallbacks(size); ok {
			return f, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrFontLoad, custom)
	}

	if f, ok := r.tryFallbacks(size); ok {
		return f, nil
	}
	base := r.baseline()
	log.Warn("后备字体均不可用，使用内置基线字体", "requested", size, "actual", base.Size)
	return base, nil
}

// validSize 排除 0、负数、NaN 与 ±Inf。
func validSize(size float64) bool {
	return size > 0 && !math.IsInf(size, 0)
}

func (r *Resolver) tryFallbacks(size float64) (*Font, bool) {
	for _, res := range r.Fallbacks {
		f, err := r.open(res, size)
		if err != nil {
			r.logger().Warn("后备字体加载失败", "font", res.Label(), "error", err)
			continue
		}
		r.logger().Debug("使用后备字体", "font", f.Source, "size", size)
		return f, true
	}
	return nil, false
}

func (r *Resolver) open(res fonts.Resource, size float64) (*Font, error) {
	data, err := fonts.Read(res, r.BaseDir)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", res.Label(), err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面 %s 失败: %w", res.Label(), err)
	}
	return &Font{Face: face, Source: res.Label(), Size: size}, nil
}

func (r *Resolver) baseline() *Font {
	face := r.Baseline
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Font{
		Face:     face,
		Source:   "baseline",
		Size:     float64(face.Metrics().Height.Ceil()),
		Degraded: true,
	}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
