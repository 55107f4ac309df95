package fonts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/font"
)

// ErrSystemFontNotFound 表示在系统字体目录中找不到指定家族名的字体。
var ErrSystemFontNotFound = errors.New("系统字体不存在")

// SearchDirs 返回当前平台的系统字体目录。
func SearchDirs() []string {
	return font.DefaultFontDirs()
}

// FindSystem 按字体家族名（如 "DejaVu Sans"，或逗号分隔的候选列表与 serif 等通用名）查找常规字重的系统字体。
// 字体列表在首次调用时扫描并缓存。
func FindSystem(name string) (path string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("系统字体名称为空")
	}
	// 扫描目录出错时 canvas 缓存的字体列表为 nil，Match 会 panic
	defer func() {
		if r := recover(); r != nil {
			path, err = "", fmt.Errorf("%w: %s: 扫描系统字体失败: %v", ErrSystemFontNotFound, name, r)
		}
	}()
	path, ok := canvas.FindSystemFont(name, canvas.FontRegular)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSystemFontNotFound, name)
	}
	return path, nil
}

// FindIn 在给定目录中按家族名查找，每次调用都重新扫描，不使用进程级缓存。
func FindIn(dirs []string, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("系统字体名称为空")
	}
	sys, err := font.FindSystemFonts(dirs)
	if err != nil {
		return "", fmt.Errorf("扫描系统字体失败: %w", err)
	}
	meta, ok := sys.Match(name, font.Regular)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSystemFontNotFound, name)
	}
	return meta.Filename, nil
}
