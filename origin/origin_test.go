package origin

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com/page", "http://example.com"},
		{"http://example.com:80/page", "http://example.com"},
		{"http://example.com:8080/page", "http://example.com:8080"},
		{"https://Example.COM/x?y=z#f", "https://example.com"},
		{"https://example.com:443", "https://example.com"},
		{"about:blank", "null"},
		{"data:text/plain,hi", "null"},
	}

	for _, tt := range tests {
		o, err := Parse(tt.url)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.url, err)
			continue
		}
		if got := o.Serialize(); got != tt.want {
			t.Errorf("Parse(%q).Serialize() = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, raw := range []string{"", "/relative/path", "http://exa mple.com/%zz"} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) should have failed", raw)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	a, _ := Parse("http://example.com/a")
	b, _ := Parse("http://example.com:80/b")
	c, _ := Parse("https://example.com/a")
	d, _ := Parse("http://example.com:8080/a")

	if !a.IsSameOrigin(b) {
		t.Error("Expected default-port origins to match")
	}
	if a.IsSameOrigin(c) {
		t.Error("Expected scheme mismatch to differ")
	}
	if a.IsSameOrigin(d) {
		t.Error("Expected port mismatch to differ")
	}
}

func TestOpaqueNeverSameOrigin(t *testing.T) {
	a := NewOpaque()
	b := NewOpaque()
	if a.IsSameOrigin(b) {
		t.Error("Two opaque origins must not be same-origin")
	}
	if a.IsSameOrigin(a) {
		t.Error("An opaque origin must not be same-origin with itself")
	}
}
