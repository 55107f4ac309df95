package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体随 golang.org/x/image 一同编译进二进制，任何平台都可用。
var embedded = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
}

// Resource can be provided either by Bytes or by Src.
// Src 支持 "embed:goregular"、"system:Arial" 以及普通文件路径。
type Resource struct {
	Name  string
	Src   string
	Bytes []byte
}

// Label 返回用于日志与调试输出的资源名称。
func (r Resource) Label() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Src != "":
		return r.Src
	default:
		return "<bytes>"
	}
}

// Load 返回内置字体的字节数据，name 可写为 "embed:goregular" 或直接 "goregular".
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	key = strings.TrimSuffix(key, ".ttf")
	data, ok := embedded[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Embedded 列出全部内置字体名称。
func Embedded() []string {
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Read 按资源描述读取字体字节。相对路径以 baseDir 为根解析。
func Read(res Resource, baseDir string) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	src := strings.TrimSpace(res.Src)
	if src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", res.Label())
	}
	switch {
	case strings.HasPrefix(src, "embed:"):
		return Load(src)
	case strings.HasPrefix(src, "system:"):
		path, err := FindSystem(strings.TrimPrefix(src, "system:"))
		if err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", src, err)
	}
	return data, nil
}
