package overlay

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"

	"github.com/ByLCY/textstamp/fonts"
)

func TestResolveCustomFont(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.ttf"), gobold.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	r := &Resolver{BaseDir: dir, Logger: quietLogger()}
	f, err := r.Resolve("custom.ttf", 30)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	defer f.Close()
	if f.Source != "custom.ttf" || f.Size != 30 || f.Degraded {
		t.Fatalf("unexpected font: %+v", f)
	}
}

func TestResolveCustomFallsBackInOrder(t *testing.T) {
	r := &Resolver{
		Fallbacks: []fonts.Resource{
			{Name: "Nope", Src: "system:NoSuchFont-textstamp"},
			{Name: "goregular", Src: "embed:goregular"},
			{Name: "gobold", Src: "embed:gobold"},
		},
		Logger: quietLogger(),
	}
	f, err := r.Resolve(filepath.Join(t.TempDir(), "missing.ttf"), 24)
	if err != nil {
		t.Fatalf("自定义字体失败后应使用后备字体: %v", err)
	}
	defer f.Close()
	if f.Source != "goregular" || f.Size != 24 || f.Degraded {
		t.Fatalf("unexpected fallback: %+v", f)
	}
}

func TestResolveCustomIsStrict(t *testing.T) {
	r := &Resolver{
		Fallbacks: []fonts.Resource{{Src: "system:NoSuchFont-textstamp"}},
		Logger:    quietLogger(),
	}
	_, err := r.Resolve("missing.ttf", 24)
	if !errors.Is(err, ErrFontLoad) {
		t.Fatalf("expected ErrFontLoad, got %v", err)
	}
}

func TestResolveWithoutCustomDegradesToBaseline(t *testing.T) {
	r := &Resolver{
		Fallbacks: []fonts.Resource{{Src: "system:NoSuchFont-textstamp"}},
		Logger:    quietLogger(),
	}
	f, err := r.Resolve("", 30)
	if err != nil {
		t.Fatalf("未指定自定义字体时不应报错: %v", err)
	}
	if !f.Degraded || f.Source != "baseline" {
		t.Fatalf("expected baseline font, got %+v", f)
	}
	// 基线字体的字号由字体本身决定
	if f.Size != 13 {
		t.Fatalf("baseline size mismatch: got=%g want=13", f.Size)
	}
}

func TestResolveRejectsNonPositiveSize(t *testing.T) {
	r := &Resolver{Logger: quietLogger()}
	for _, size := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := r.Resolve("", size); err == nil {
			t.Fatalf("字号 %v 应当报错", size)
		}
	}
}

func TestResolveRejectsCorruptFont(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := &Resolver{BaseDir: dir, Logger: quietLogger()}
	if _, err := r.Resolve("broken.ttf", 12); !errors.Is(err, ErrFontLoad) {
		t.Fatalf("损坏的字体在无后备时应返回 ErrFontLoad, got %v", err)
	}
}
