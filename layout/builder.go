package layout

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/textstamp/binding"
	"github.com/ByLCY/textstamp/dsl"
	"github.com/ByLCY/textstamp/overlay"
)

const (
	// 模板未指定时的默认字号与颜色。
	defaultFontSize = 70
)

var defaultColor = overlay.Color{}

// Build 根据模板 AST 与调用方数据生成叠加参数。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("模板为空")
	}

	res, err := collectResources(doc, opts.BaseDir)
	if err != nil {
		return nil, err
	}
	section := firstOverlay(doc)
	if section == nil {
		return nil, fmt.Errorf("模板中缺少 overlay 段落")
	}

	ov, debug, err := buildOverlay(section, res, data, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Name:      doc.Name,
		Meta:      collectMeta(doc),
		Resources: res,
		Overlay:   ov,
	}
	if opts.Debug.RawLines {
		result.Debug = debug
	}
	return result, nil
}

func buildOverlay(section *dsl.OverlaySection, res ResourceSet, data any, opts BuildOptions) (Overlay, *Debug, error) {
	if section.Block == nil {
		return Overlay{}, nil, fmt.Errorf("overlay 段落缺少内容")
	}
	attrs := section.Block.Assignments()
	ov := Overlay{}

	image := attrs["image"].Raw()
	if image == "" {
		return ov, nil, fmt.Errorf("overlay 缺少 image")
	}
	ov.Image = resolvePath(image, opts.BaseDir)

	if v := attrs["font"]; v != nil {
		src, err := resolveFont(v, res, opts.BaseDir)
		if err != nil {
			return ov, nil, err
		}
		ov.Font = src
	}

	block := overlay.TextBlock{Color: defaultColor, Size: defaultFontSize}
	if v := attrs["color"]; v != nil {
		c, err := parseColorValue(v)
		if err != nil {
			return ov, nil, err
		}
		block.Color = c
	}
	if v := attrs["size"]; v != nil {
		size, err := parseFontSize(v.Raw())
		if err != nil {
			return ov, nil, err
		}
		block.Size = size
	}
	if v := attrs["offset"]; v != nil {
		off, err := parseOffset(v)
		if err != nil {
			return ov, nil, err
		}
		block.Offset = off
	}
	if v := attrs["bias"]; v != nil {
		bias, err := parseInt(v.Raw())
		if err != nil {
			return ov, nil, fmt.Errorf("bias 无法解析: %w", err)
		}
		ov.VerticalBias = &bias
	}

	interpolate := binding.Interpolate
	if opts.DropMissing {
		interpolate = binding.Fill
	}

	// text 行原样保留（包括空行）；optional 行插值后为空则省略。
	debug := &Debug{}
	block.Lines = []string{}
	for _, st := range section.Block.Statements {
		cmd := st.Command
		if cmd == nil {
			continue
		}
		switch cmd.Name {
		case "text":
			for _, raw := range cmd.Block.Texts() {
				debug.RawLines = append(debug.RawLines, raw)
				block.Lines = append(block.Lines, interpolate(raw, data))
			}
		case "optional":
			for _, raw := range cmd.Block.Texts() {
				debug.RawLines = append(debug.RawLines, raw)
				line := interpolate(raw, data)
				if line == "" {
					debug.Dropped = append(debug.Dropped, raw)
					continue
				}
				block.Lines = append(block.Lines, line)
			}
		default:
			return ov, nil, fmt.Errorf("overlay 中未知的命令 %s", cmd.Name)
		}
	}
	ov.Block = block
	return ov, debug, nil
}

func collectResources(doc *dsl.Document, baseDir string) (ResourceSet, error) {
	res := ResourceSet{
		Fonts: map[string]FontResource{},
	}
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		block := section.Resources.Block
		for _, cmd := range block.Commands("font") {
			font, err := parseFontResource(cmd, baseDir)
			if err != nil {
				return res, err
			}
			res.Fonts[font.Name] = font
		}
		for _, src := range valueToStringSlice(block.Assignments()["fallbacks"]) {
			res.Fallbacks = append(res.Fallbacks, resolvePath(src, baseDir))
		}
	}
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "textstamp",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			switch key {
			case "title":
				meta.Title = stmt.Assignment.Value.Raw()
			case "author":
				meta.Author = stmt.Assignment.Value.Raw()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Raw()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Raw()
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command, baseDir string) (FontResource, error) {
	if len(cmd.Args) == 0 {
		return FontResource{}, fmt.Errorf("font 声明缺少名称")
	}
	font := FontResource{Name: cmd.Args[0].Value}
	src := cmd.Block.Assignments()["src"].Raw()
	if src == "" {
		return font, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	font.Src = resolvePath(src, baseDir)
	return font, nil
}

// resolveFont 支持引用 resources 中的字体名，或直接写字体路径/embed:/system:。
func resolveFont(v *dsl.Value, res ResourceSet, baseDir string) (string, error) {
	if v.Ident != nil {
		font, ok := res.Fonts[*v.Ident]
		if !ok {
			return "", fmt.Errorf("未定义的字体 %s", *v.Ident)
		}
		return font.Src, nil
	}
	src := v.Raw()
	if src == "" {
		return "", nil
	}
	if font, ok := res.Fonts[src]; ok {
		return font.Src, nil
	}
	return resolvePath(src, baseDir), nil
}

func firstOverlay(doc *dsl.Document) *dsl.OverlaySection {
	for _, section := range doc.Sections {
		if section.Overlay != nil {
			return section.Overlay
		}
	}
	return nil
}

// resolvePath 将相对路径以 baseDir 为根解析；embed:/system: 等资源前缀保持不变。
func resolvePath(src, baseDir string) string {
	if src == "" || baseDir == "" || filepath.IsAbs(src) {
		return src
	}
	if strings.HasPrefix(src, "embed:") || strings.HasPrefix(src, "system:") {
		return src
	}
	return filepath.Join(baseDir, src)
}

func parseColorValue(v *dsl.Value) (overlay.Color, error) {
	if v.Array != nil {
		if len(v.Array.Values) != 3 {
			return overlay.Color{}, fmt.Errorf("颜色数组需要 3 个分量，实际 %d 个", len(v.Array.Values))
		}
		var rgb [3]uint8
		for i, item := range v.Array.Values {
			n, err := parseInt(item.Raw())
			if err != nil || n < 0 || n > 255 {
				return overlay.Color{}, fmt.Errorf("颜色分量 %q 无效", item.Raw())
			}
			rgb[i] = uint8(n)
		}
		return overlay.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	}
	return parseColor(v.Raw())
}

func parseColor(value string) (overlay.Color, error) {
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(string(hex[0]), 2) + strings.Repeat(string(hex[1]), 2) + strings.Repeat(string(hex[2]), 2)
	case 6, 8:
		hex = hex[:6]
	default:
		return overlay.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return overlay.Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return overlay.Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func parseFontSize(value string) (float64, error) {
	f, err := strconv.ParseFloat(trimUnit(value), 64)
	if err != nil {
		return 0, fmt.Errorf("字号 %s 无法解析: %w", value, err)
	}
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("字号必须为正数: %s", value)
	}
	return f, nil
}

func parseOffset(v *dsl.Value) (overlay.Offset, error) {
	if v.Array == nil || len(v.Array.Values) != 2 {
		return overlay.Offset{}, fmt.Errorf("offset 需要形如 [dx, dy] 的数组")
	}
	dx, err := parseInt(v.Array.Values[0].Raw())
	if err != nil {
		return overlay.Offset{}, fmt.Errorf("offset dx 无法解析: %w", err)
	}
	dy, err := parseInt(v.Array.Values[1].Raw())
	if err != nil {
		return overlay.Offset{}, fmt.Errorf("offset dy 无法解析: %w", err)
	}
	return overlay.Offset{DX: dx, DY: dy}, nil
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(trimUnit(value))
}

func trimUnit(value string) string {
	for _, suffix := range []string{"px", "pt"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := item.Raw(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := val.Raw(); s != "" {
		return []string{s}
	}
	return nil
}
