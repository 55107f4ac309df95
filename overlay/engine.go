package overlay

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/textstamp/renderer"
)

// Engine 依次执行字体解析、测量、定位与绘制/编码四个阶段。
// Engine 只保存配置，可被多个 goroutine 同时使用。
type Engine struct {
	opts     Options
	resolver *Resolver
}

// NewEngine 使用给定配置创建引擎。Options 按原样使用，需要默认值请从 DefaultOptions 开始修改。
func NewEngine(opts Options) *Engine {
	if opts.Encoder == nil {
		opts.Encoder = renderer.PNG{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		opts: opts,
		resolver: &Resolver{
			Fallbacks: opts.Fallbacks,
			Baseline:  opts.Baseline,
			BaseDir:   opts.BaseDir,
			Logger:    opts.Logger,
		},
	}
}

// Encoder 返回输出编码器。
func (e *Engine) Encoder() renderer.Encoder { return e.opts.Encoder }

// Compose 合成并编码，返回完整的字节流。失败时不返回任何字节。
func (e *Engine) Compose(job Job) ([]byte, error) {
	res, err := e.Render(job)
	if err != nil {
		return nil, err
	}
	return e.encode(res)
}

// ComposeTo 与 Compose 相同，但把结果写入 w 并返回定位结果。
// 写入前先完整编码，失败时 w 不会收到部分数据。
func (e *Engine) ComposeTo(w io.Writer, job Job) (*Plan, error) {
	res, err := e.Render(job)
	if err != nil {
		return nil, err
	}
	data, err := e.encode(res)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("写出图像失败: %w", err)
	}
	return &res.Plan, nil
}

func (e *Engine) encode(res *Result) ([]byte, error) {
	data, err := renderer.Bytes(e.opts.Encoder, res.Image)
	if err != nil {
		e.opts.Logger.Error("编码输出图像失败", "error", err)
		return nil, ErrRender
	}
	return data, nil
}

// Render 执行四个阶段并返回绘制后的工作副本。
// 任何非预期的失败（包括 panic）都统一转换为 ErrRender。
func (e *Engine) Render(job Job) (res *Result, err error) {
	log := e.opts.Logger
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("合成过程中发生异常", "panic", rec)
			res, err = nil, ErrRender
		}
	}()

	src, err := e.source(job)
	if err != nil {
		log.Error("无法读取源图像", "path", job.ImagePath, "error", err)
		return nil, err
	}
	if !validSize(job.Block.Size) {
		log.Error("字号无效", "size", job.Block.Size)
		return nil, ErrRender
	}

	fnt, err := e.resolver.Resolve(job.FontPath, job.Block.Size)
	if err != nil {
		log.Error("字体解析失败", "font", job.FontPath, "error", err)
		return nil, err
	}
	defer fnt.Close()

	bias := e.opts.VerticalBias
	if job.VerticalBias != nil {
		bias = *job.VerticalBias
	}

	bounds := src.Bounds()
	canvas := image.Point{X: bounds.Dx(), Y: bounds.Dy()}
	metrics := Measure(fnt.Face, job.Block.Text(), e.opts.LineSpacing)
	block := metrics.Size()
	origin := Position(canvas, block, job.Block.Offset, bias)

	log.Debug("文本块定位",
		"image", fmt.Sprintf("%dx%d", canvas.X, canvas.Y),
		"block", fmt.Sprintf("%dx%d", block.X, block.Y),
		"origin", origin,
		"font", fnt.Source,
		"size", fnt.Size,
	)

	img := Render(src, metrics, origin, fnt.Face, job.Block.Color)

	return &Result{
		Image: img,
		Plan: Plan{
			ImageWidth:   canvas.X,
			ImageHeight:  canvas.Y,
			Font:         fnt.Source,
			FontSize:     fnt.Size,
			Degraded:     fnt.Degraded,
			Lines:        append([]string(nil), job.Block.Lines...),
			BlockWidth:   block.X,
			BlockHeight:  block.Y,
			X:            origin.X,
			Y:            origin.Y,
			VerticalBias: bias,
		},
	}, nil
}

func (e *Engine) source(job Job) (image.Image, error) {
	if job.Image != nil {
		return job.Image, nil
	}
	if job.ImagePath == "" {
		return nil, fmt.Errorf("%w: 未指定图像路径", ErrResourceNotFound)
	}
	path := job.ImagePath
	if !filepath.IsAbs(path) && e.opts.BaseDir != "" {
		path = filepath.Join(e.opts.BaseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片 %s 失败: %v", ErrResourceNotFound, job.ImagePath, err)
	}
	return img, nil
}
