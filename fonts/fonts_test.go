package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadEmbedded(t *testing.T) {
	for _, name := range []string{"embed:goregular", "goregular", "embed:GoRegular.ttf"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", name, err)
		}
		if len(data) != len(goregular.TTF) {
			t.Fatalf("Load(%q) 返回的字节不是 goregular", name)
		}
	}
	if _, err := Load("embed:missing"); err == nil {
		t.Fatalf("未知内置字体应当报错")
	}
}

func TestReadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := Read(Resource{Src: "custom.ttf"}, dir)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(data) != len(goregular.TTF) {
		t.Fatalf("unexpected font size: %d", len(data))
	}

	if _, err := Read(Resource{Src: "missing.ttf"}, dir); err == nil {
		t.Fatalf("不存在的字体文件应当报错")
	}
	if _, err := Read(Resource{Name: "Body"}, dir); err == nil {
		t.Fatalf("缺少 src 应当报错")
	}
}

func TestReadPrefersBytes(t *testing.T) {
	blob := []byte("font-bytes")
	data, err := Read(Resource{Src: "ignored.ttf", Bytes: blob}, "")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(data) != string(blob) {
		t.Fatalf("Bytes 应当优先于 Src")
	}
}

func TestFindInMatchesFamilyName(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "truetype", "go")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	// 文件名与家族名无关，只能通过 name 表匹配
	want := filepath.Join(nested, "renamed.ttf")
	if err := os.WriteFile(want, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "Go.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindIn([]string{filepath.Join(dir, "nope"), dir}, "Go")
	if err != nil {
		t.Fatalf("FindIn error: %v", err)
	}
	if got != want {
		t.Fatalf("path mismatch: got=%q want=%q", got, want)
	}

	got, err = FindIn([]string{dir}, "Helvetica, Go")
	if err != nil || got != want {
		t.Fatalf("候选列表应回退到 Go: got=%q err=%v", got, err)
	}

	_, err = FindIn([]string{dir}, "renamed")
	if !errors.Is(err, ErrSystemFontNotFound) {
		t.Fatalf("文件名不应参与匹配, got %v", err)
	}
	_, err = FindIn([]string{dir}, "Helvetica")
	if !errors.Is(err, ErrSystemFontNotFound) {
		t.Fatalf("expected ErrSystemFontNotFound, got %v", err)
	}
	if _, err := FindIn([]string{dir}, "  "); err == nil {
		t.Fatalf("空名称应当报错")
	}
}

func TestFindSystemRejectsEmptyName(t *testing.T) {
	if _, err := FindSystem(" "); err == nil {
		t.Fatalf("空名称应当报错")
	}
}

func TestEmbeddedSorted(t *testing.T) {
	names := Embedded()
	if len(names) == 0 {
		t.Fatalf("内置字体列表为空")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("列表未排序: %v", names)
		}
	}
}
