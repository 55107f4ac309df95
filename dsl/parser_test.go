package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/textstamp/dsl"
)

const sampleDSL = `
template Flyer v1 {
  meta {
    title: "Year of Bible"
    keywords: [
      "smym"
      "flyer"
    ]
  }

  resources {
    font Winky {
      src: "WinkySans-VariableFont_wght.ttf"
    }
    fallbacks: ["system:Arial", "embed:goregular"]
  }

  overlay main {
    image: "test.jpeg"
    font: Winky
    color: #E91E63
    size: 30
    offset: [0, -12]
    bias: 100
    text {
      "St. John Paul Mission Center"
      ""
      "${day}"
    }
    optional { "${text1}" "${text2}" "${text3}" }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Flyer" {
		t.Fatalf("expected template name Flyer, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{}
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,resources,overlay" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	meta := doc.Sections[0].Meta.Block.Assignments()
	if got := meta["title"].Raw(); got != "Year of Bible" {
		t.Fatalf("expected title, got %q", got)
	}
	if kw := meta["keywords"]; kw == nil || kw.Array == nil || len(kw.Array.Values) != 2 {
		t.Fatalf("expected 2 keywords, got %+v", kw)
	}

	res := doc.Sections[1].Resources.Block
	fontsCmd := res.Commands("font")
	if len(fontsCmd) != 1 || len(fontsCmd[0].Args) != 1 || fontsCmd[0].Args[0].Value != "Winky" {
		t.Fatalf("unexpected font declaration: %+v", fontsCmd)
	}
	if got := fontsCmd[0].Block.Assignments()["src"].Raw(); got != "WinkySans-VariableFont_wght.ttf" {
		t.Fatalf("unexpected font src: %q", got)
	}
	fb := res.Assignments()["fallbacks"]
	if fb == nil || fb.Array == nil || len(fb.Array.Values) != 2 || fb.Array.Values[1].Raw() != "embed:goregular" {
		t.Fatalf("unexpected fallbacks: %+v", fb)
	}

	ov := doc.Sections[2].Overlay
	if ov.Name != "main" {
		t.Fatalf("expected overlay name main, got %q", ov.Name)
	}
	attrs := ov.Block.Assignments()
	if attrs["color"].Color == nil || *attrs["color"].Color != "#E91E63" {
		t.Fatalf("颜色应当作为一个完整的 Color token: %+v", attrs["color"])
	}
	if attrs["font"].Ident == nil || *attrs["font"].Ident != "Winky" {
		t.Fatalf("font 应引用资源名: %+v", attrs["font"])
	}
	if got := attrs["size"].Raw(); got != "30" {
		t.Fatalf("unexpected size: %q", got)
	}
	offset := attrs["offset"].Array
	if offset == nil || len(offset.Values) != 2 || offset.Values[1].Raw() != "-12" {
		t.Fatalf("unexpected offset: %+v", offset)
	}

	text := ov.Block.Commands("text")
	if len(text) != 1 {
		t.Fatalf("expected one text block, got %d", len(text))
	}
	lines := text[0].Block.Texts()
	if len(lines) != 3 || lines[1] != "" || lines[2] != "${day}" {
		t.Fatalf("空行应当原样保留: %q", lines)
	}
	optional := ov.Block.Commands("optional")
	if len(optional) != 1 || len(optional[0].Block.Texts()) != 3 {
		t.Fatalf("unexpected optional block: %+v", optional)
	}
}

func TestParseAllowsOverlayWithoutName(t *testing.T) {
	doc, err := dsl.ParseString(`template T v1 { overlay { image: "a.png"; size: 12 } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ov := doc.Sections[0].Overlay
	if ov == nil || ov.Name != "" {
		t.Fatalf("unexpected overlay: %+v", ov)
	}
	if got := ov.Block.Assignments()["size"].Raw(); got != "12" {
		t.Fatalf("unexpected size: %q", got)
	}
}

func TestParseRejectsUnknownRoot(t *testing.T) {
	if _, err := dsl.ParseString(`doc T v1 { }`); err == nil {
		t.Fatalf("expected parse error for non-template root")
	}
}

func TestParseSkipsComments(t *testing.T) {
	src := `
// leading comment
template T v1 {
  /* block */
  overlay {
    # hash comment
    image: "a.png"
  }
}`
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := doc.Sections[0].Overlay.Block.Assignments()["image"].Raw(); got != "a.png" {
		t.Fatalf("unexpected image: %q", got)
	}
}
