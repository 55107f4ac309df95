package overlay

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LineMetrics 描述块内的一行。Dot 与 Bounds 都相对块的布局原点（首行顶部左侧）。
type LineMetrics struct {
	Text    string
	Advance fixed.Int26_6
	Dot     fixed.Point26_6
	Bounds  fixed.Rectangle26_6
}

// Metrics 是整块文本的测量结果，绘制阶段直接复用，保证测量与绘制一致。
type Metrics struct {
	Lines       []LineMetrics
	Bounds      fixed.Rectangle26_6
	LineAdvance int
}

// Size 返回块包围盒的像素宽高（向上取整）。
func (m Metrics) Size() image.Point {
	return image.Point{
		X: (m.Bounds.Max.X - m.Bounds.Min.X).Ceil(),
		Y: (m.Bounds.Max.Y - m.Bounds.Min.Y).Ceil(),
	}
}

// Measure 计算多行文本在居中对齐下的包围盒。
//
// 每行在块自身宽度（最宽一行的步进宽度）内居中；行距为字体高度加 lineSpacing。
// 包围盒取各行墨迹范围的并集，没有墨迹的行（空行）按一个零宽、高度为 ascent
// 的占位框计入，因此空行始终影响块高度。
func Measure(face font.Face, text string, lineSpacing int) Metrics {
	parts := strings.Split(text, "\n")
	fm := face.Metrics()
	ascent := fm.Ascent.Ceil()
	advance := (fm.Ascent + fm.Descent).Ceil() + lineSpacing

	lines := make([]LineMetrics, len(parts))
	var widest fixed.Int26_6
	for i, p := range parts {
		bounds, adv := font.BoundString(face, p)
		lines[i] = LineMetrics{Text: p, Advance: adv, Bounds: bounds}
		if adv > widest {
			widest = adv
		}
	}

	var box fixed.Rectangle26_6
	for i := range lines {
		ln := &lines[i]
		// 对齐到整像素，避免子像素偏移导致 hinting 前后不一致
		x := ((widest - ln.Advance) / 2).Floor()
		ln.Dot = fixed.P(x, ascent+i*advance)

		var ink fixed.Rectangle26_6
		if ln.Bounds.Empty() {
			cx := ln.Dot.X + ln.Advance/2
			ink = fixed.Rectangle26_6{
				Min: fixed.Point26_6{X: cx, Y: ln.Dot.Y - fixed.I(ascent)},
				Max: fixed.Point26_6{X: cx, Y: ln.Dot.Y},
			}
		} else {
			ink = ln.Bounds.Add(ln.Dot)
		}
		ln.Bounds = ink
		if i == 0 {
			box = ink
		} else {
			box = extend(box, ink)
		}
	}

	return Metrics{Lines: lines, Bounds: box, LineAdvance: advance}
}

// extend 与 Rectangle26_6.Union 不同：零宽的占位框同样参与合并。
func extend(a, b fixed.Rectangle26_6) fixed.Rectangle26_6 {
	if b.Min.X < a.Min.X {
		a.Min.X = b.Min.X
	}
	if b.Min.Y < a.Min.Y {
		a.Min.Y = b.Min.Y
	}
	if b.Max.X > a.Max.X {
		a.Max.X = b.Max.X
	}
	if b.Max.Y > a.Max.Y {
		a.Max.Y = b.Max.Y
	}
	return a
}
