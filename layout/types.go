package layout

import (
	"github.com/ByLCY/textstamp/fonts"
	"github.com/ByLCY/textstamp/overlay"
	canvasrenderer "github.com/ByLCY/textstamp/renderer/canvas"
)

// 该文件定义模板解析结果，供引擎调用、HTTP 外壳与调试 JSON 共用。

// Result 保存模板解析后的叠加参数与资源信息。
type Result struct {
	Name      string       `json:"name"`
	Meta      DocumentMeta `json:"meta"`
	Resources ResourceSet  `json:"resources"`
	Overlay   Overlay      `json:"overlay"`
	Debug     *Debug       `json:"debug,omitempty"`
}

// ResourceSet 记录模板中声明的字体与后备字体链。
type ResourceSet struct {
	Fonts     map[string]FontResource `json:"fonts"`
	Fallbacks []string                `json:"fallbacks,omitempty"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:* 或 system:* 形式。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Overlay 是可以直接交给引擎的一次叠加描述，路径均已按 BaseDir 解析。
type Overlay struct {
	Image        string            `json:"image"`
	Font         string            `json:"font,omitempty"`
	Block        overlay.TextBlock `json:"block"`
	VerticalBias *int              `json:"verticalBias,omitempty"`
}

// Debug holds optional debug info displayed only when enabled by BuildOptions.
type Debug struct {
	// RawLines 为插值前的模板行，可选行同样列出。
	RawLines []string `json:"rawLines,omitempty"`
	// Dropped 为插值后为空而被省略的可选行（模板原文）。
	Dropped []string `json:"dropped,omitempty"`
}

// DocumentMeta 保存模板元信息，PDF 输出时写入文档属性。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// PDF 转换为 PDF 文档属性。
func (m DocumentMeta) PDF() canvasrenderer.Meta {
	return canvasrenderer.Meta{
		Title:    m.Title,
		Author:   m.Author,
		Subject:  m.Subject,
		Creator:  m.Creator,
		Keywords: m.Keywords,
	}
}

// Job 返回可以直接交给 overlay.Engine 的调用参数。
func (r *Result) Job() overlay.Job {
	return overlay.Job{
		ImagePath:    r.Overlay.Image,
		Block:        r.Overlay.Block,
		FontPath:     r.Overlay.Font,
		VerticalBias: r.Overlay.VerticalBias,
	}
}

// Fallbacks 将模板声明的后备字体链转换为字体资源；未声明时返回 nil，由调用方沿用引擎配置。
func (r *Result) Fallbacks() []fonts.Resource {
	if len(r.Resources.Fallbacks) == 0 {
		return nil
	}
	out := make([]fonts.Resource, 0, len(r.Resources.Fallbacks))
	for _, src := range r.Resources.Fallbacks {
		out = append(out, fonts.Resource{Src: src})
	}
	return out
}
