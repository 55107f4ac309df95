package overlay

import (
	"image"
	"image/color"
	"log/slog"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ByLCY/textstamp/fonts"
	"github.com/ByLCY/textstamp/renderer"
)

// DefaultVerticalBias 是文本块相对几何中心整体上移的像素数。
const DefaultVerticalBias = 100

// DefaultLineSpacing 是相邻两行之间额外的像素间距。
const DefaultLineSpacing = 4

// Color 采用 0-255 的 RGB 数值，绘制时不透明。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ToRGBA 返回不透明的 color.RGBA。
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Offset 在居中之后叠加，正值向右/向下。
type Offset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// TextBlock 是一次合成要绘制的整块文本。
// Lines 的顺序与内容（包括空行）原样保留，不做裁剪或跳过。
type TextBlock struct {
	Lines  []string `json:"lines"`
	Color  Color    `json:"color"`
	Size   float64  `json:"size"` // 直接作为请求字号使用，不做自动适配
	Offset Offset   `json:"offset"`
}

// Text 以换行符拼接所有行，测量与绘制都以整块文本为单位。
func (b TextBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}

// Job 描述一次合成调用的全部输入。Image 非空时忽略 ImagePath。
type Job struct {
	ImagePath string
	Image     image.Image
	Block     TextBlock
	FontPath  string
	// VerticalBias 非空时覆盖 Options.VerticalBias。
	VerticalBias *int
}

// Options 配置引擎。引擎本身不保存任何调用间状态。
type Options struct {
	VerticalBias int
	LineSpacing  int
	// Fallbacks 按顺序尝试；全部失败后才会使用 Baseline。
	Fallbacks []fonts.Resource
	Baseline  font.Face
	BaseDir   string
	Encoder   renderer.Encoder
	Logger    *slog.Logger
}

// DefaultOptions 返回默认配置：上移 100px、系统 Arial 作为后备字体、PNG 输出。
func DefaultOptions() Options {
	return Options{
		VerticalBias: DefaultVerticalBias,
		LineSpacing:  DefaultLineSpacing,
		Fallbacks:    []fonts.Resource{{Name: "Arial", Src: "system:Arial"}},
		Baseline:     basicfont.Face7x13,
		Encoder:      renderer.PNG{},
	}
}

// Plan 记录一次合成实际使用的参数，供日志与调试 JSON 使用。
type Plan struct {
	ImageWidth   int      `json:"imageWidth"`
	ImageHeight  int      `json:"imageHeight"`
	Font         string   `json:"font"`
	FontSize     float64  `json:"fontSize"`
	Degraded     bool     `json:"degraded"`
	Lines        []string `json:"lines"`
	BlockWidth   int      `json:"blockWidth"`
	BlockHeight  int      `json:"blockHeight"`
	X            int      `json:"x"`
	Y            int      `json:"y"`
	VerticalBias int      `json:"verticalBias"`
}

// Result 是合成后的工作副本及其参数。
type Result struct {
	Image *image.RGBA
	Plan  Plan
}
