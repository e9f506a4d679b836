package intake

import (
	"strings"
	"testing"
)

func TestNormalizeExt(t *testing.T) {
	cases := map[string]string{
		"scan.JPG":    ".jpg",
		"page.jpeg":   ".jpeg",
		"essay.png":   ".png",
		"anim.gif":    ".gif",
		"batch.PDF":   ".pdf",
		"notes.txt":   "",
		"noextension": "",
		"":            "",
	}
	for in, want := range cases {
		if got := normalizeExt(in); got != want {
			t.Fatalf("normalizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsPDFExt(t *testing.T) {
	if !isPDFExt(".pdf") || isPDFExt(".png") {
		t.Fatalf("pdf extension detection broken")
	}
}

func TestBuildStoredName(t *testing.T) {
	a := buildStoredName(".png")
	b := buildStoredName(".png")
	if a == b {
		t.Fatalf("stored names must not collide: %q", a)
	}
	if !strings.HasSuffix(a, ".png") || len(a) != 18+len(".png") {
		t.Fatalf("unexpected stored name %q", a)
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"essays/class-a/scan.png": "scan.png",
		"scan.png":                "scan.png",
		"  scan.png  ":            "scan.png",
		"":                        "upload",
	}
	for in, want := range cases {
		if got := displayName(in); got != want {
			t.Fatalf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
