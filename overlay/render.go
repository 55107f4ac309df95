package overlay

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Render 在 src 的 RGBA 副本上绘制 m 描述的文本块，使块包围盒左上角落在 origin。
// src 本身不会被修改；副本的坐标从 (0,0) 开始，尺寸与 src 相同。
func Render(src image.Image, m Metrics, origin image.Point, face font.Face, c Color) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)

	shift := fixed.P(origin.X-m.Bounds.Min.X.Floor(), origin.Y-m.Bounds.Min.Y.Floor())
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.ToRGBA()),
		Face: face,
	}
	for _, ln := range m.Lines {
		if ln.Text == "" {
			continue
		}
		d.Dot = ln.Dot.Add(shift)
		d.DrawString(ln.Text)
	}
	return dst
}
