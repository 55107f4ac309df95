package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/textstamp/renderer"
)

const mmPerInch = 25.4

// DefaultDPI 为未指定 DPI 时的换算精度。
const DefaultDPI = 96.0

// pdf 写入器总是以当前时间填写 CreationDate，输出前替换为固定值。
var creationDatePattern = regexp.MustCompile(`/CreationDate\(D:\d{14}(Z|[+-]\d{4})?\)`)

// Meta 保存 PDF 元信息。
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// PDF places a rendered raster image on a single PDF page via github.com/tdewolff/canvas.
// 页面尺寸由像素尺寸按 DPI 换算为毫米，图像本身不做重采样。
type PDF struct {
	DPI  float64
	Meta Meta
}

var _ renderer.Encoder = PDF{}

// Encode writes img as a one-page PDF document.
func (p PDF) Encode(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return fmt.Errorf("图像尺寸无效: %dx%d", bounds.Dx(), bounds.Dy())
	}

	dpmm := p.dpi() / mmPerInch
	width, height := p.PageSize(img)

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	p.applyMeta(writer)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.DrawImage(0, 0, img, canvas.DPMM(dpmm))
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	if _, err := w.Write(fixCreationDate(buf.Bytes())); err != nil {
		return fmt.Errorf("写出 PDF 失败: %w", err)
	}
	return nil
}

// fixCreationDate 将 CreationDate 改写为 1970-01-01 00:00:00，长度保持不变，xref 偏移无需调整。
func fixCreationDate(data []byte) []byte {
	return creationDatePattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := creationDatePattern.FindSubmatch(m)
		zone := ""
		switch len(sub[1]) {
		case 1:
			zone = "Z"
		case 5:
			zone = "+0000"
		}
		return []byte("/CreationDate(D:19700101000000" + zone + ")")
	})
}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Ext() string         { return ".pdf" }

// PageSize 返回 img 对应的页面尺寸（mm）。
func (p PDF) PageSize(img image.Image) (float64, float64) {
	dpmm := p.dpi() / mmPerInch
	b := img.Bounds()
	return float64(b.Dx()) / dpmm, float64(b.Dy()) / dpmm
}

func (p PDF) dpi() float64 {
	if p.DPI <= 0 {
		return DefaultDPI
	}
	return p.DPI
}

func (p PDF) applyMeta(writer *pdf.PDF) {
	if writer == nil {
		return
	}
	keywords := strings.Join(p.Meta.Keywords, ", ")
	writer.SetInfo(p.Meta.Title, p.Meta.Subject, keywords, p.Meta.Author, p.Meta.Creator)
}
