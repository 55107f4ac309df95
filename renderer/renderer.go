package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
)

// Encoder 将合成后的栅格图像序列化为可传输的字节流，例如 PNG 或 PDF。
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
	ContentType() string
	Ext() string
}

// PNG 是默认的无损编码器。压缩级别固定，相同输入得到逐字节相同的输出。
type PNG struct {
	Level png.CompressionLevel
}

var _ Encoder = PNG{}

func (p PNG) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: p.Level}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}

func (PNG) ContentType() string { return "image/png" }
func (PNG) Ext() string         { return ".png" }

// Bytes 是 Encode 到内存缓冲区的便捷写法。
func Bytes(enc Encoder, img image.Image) ([]byte, error) {
	if enc == nil {
		return nil, fmt.Errorf("encoder 不能为空")
	}
	if img == nil {
		return nil, fmt.Errorf("图像为空")
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
