package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestPNGRoundTripKeepsPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	src.SetRGBA(3, 2, color.RGBA{233, 30, 99, 255})

	data, err := Bytes(PNG{}, src)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds mismatch: got=%v want=%v", decoded.Bounds(), src.Bounds())
	}
	r, g, b, a := decoded.At(3, 2).RGBA()
	if r>>8 != 233 || g>>8 != 30 || b>>8 != 99 || a>>8 != 255 {
		t.Fatalf("pixel mismatch: %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestPNGIsDeterministic(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	a, err := Bytes(PNG{}, src)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Bytes(PNG{}, src)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("相同输入的编码结果不一致")
	}
}

func TestBytesValidatesArguments(t *testing.T) {
	if _, err := Bytes(nil, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Fatalf("nil encoder 应当报错")
	}
	if _, err := Bytes(PNG{}, nil); err == nil {
		t.Fatalf("nil image 应当报错")
	}
}
