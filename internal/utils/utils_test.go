package utils

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "a***e@example.com",
		"ab@example.com":    "a*@example.com",
		"a@example.com":     "a@example.com",
		"张三丰@qq.com":        "张*丰@qq.com",
		"noatsign":          "n******n",
		"":                  "",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	if got := NormalizeUserAgent(""); got != DefaultUserAgent() {
		t.Fatalf("empty UA should fall back to default, got %q", got)
	}
	if got := NormalizeUserAgent("curl/8.0"); got != DefaultUserAgent() {
		t.Fatalf("non-browser UA should fall back to default, got %q", got)
	}
	custom := "  Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0 "
	if got := NormalizeUserAgent(custom); got != "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0" {
		t.Fatalf("browser UA should be kept, got %q", got)
	}
}
