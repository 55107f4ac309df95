package overlay

import (
	"image"
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name   string
		canvas image.Point
		block  image.Point
		off    Offset
		bias   int
		want   image.Point
	}{
		{"centered", image.Pt(800, 600), image.Pt(200, 100), Offset{}, 0, image.Pt(300, 250)},
		{"bias", image.Pt(800, 600), image.Pt(200, 100), Offset{}, 100, image.Pt(300, 150)},
		{"offset", image.Pt(800, 600), image.Pt(200, 100), Offset{DX: 10, DY: -20}, 100, image.Pt(310, 130)},
		{"odd remainder truncates", image.Pt(801, 601), image.Pt(200, 100), Offset{}, 0, image.Pt(300, 250)},
		// 文本比画布大时不做裁剪
		{"off canvas", image.Pt(100, 50), image.Pt(300, 20), Offset{}, 100, image.Pt(-100, -85)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Position(tt.canvas, tt.block, tt.off, tt.bias); got != tt.want {
				t.Fatalf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}
