package window

import "testing"

func TestNewDocumentOrigin(t *testing.T) {
	doc, err := NewDocument("https://example.com/page", "")
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	if got := doc.Origin().Serialize(); got != "https://example.com" {
		t.Errorf("Expected https://example.com, got %q", got)
	}

	blank := AboutBlank()
	if blank.Origin().Serialize() != "null" {
		t.Errorf("about:blank should have an opaque origin, got %q", blank.Origin().Serialize())
	}
}

func TestNamedItem(t *testing.T) {
	source := `<html><body>
		<div id="container"><img name="logo" src="logo.png"></div>
		<iframe name="child"></iframe>
		<span name="not-exposed"></span>
		<form name="login"></form>
	</body></html>`
	doc, err := NewDocument("https://example.com/", source)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}

	tests := []struct {
		name string
		tag  string
		ok   bool
	}{
		{"logo", "img", true},
		{"child", "iframe", true},
		{"login", "form", true},
		{"container", "div", true}, // matched by id, any element
		{"not-exposed", "", false}, // span name attr is not exposed
		{"missing", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		node := doc.NamedItem(tt.name)
		if !tt.ok {
			if node != nil {
				t.Errorf("NamedItem(%q) should be nil, got <%s>", tt.name, node.Data)
			}
			continue
		}
		if node == nil {
			t.Errorf("NamedItem(%q) should find a node", tt.name)
			continue
		}
		if node.Data != tt.tag {
			t.Errorf("NamedItem(%q) = <%s>, want <%s>", tt.name, node.Data, tt.tag)
		}
	}
}

func TestNamedItemTreeOrder(t *testing.T) {
	source := `<html><body><form name="dup"></form><img name="dup"></body></html>`
	doc, err := NewDocument("https://example.com/", source)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	node := doc.NamedItem("dup")
	if node == nil || node.Data != "form" {
		t.Errorf("Expected the first match in tree order (form), got %v", node)
	}
}

func TestNamedItemWithoutTree(t *testing.T) {
	if AboutBlank().NamedItem("anything") != nil {
		t.Error("A document with no tree has no named items")
	}
}
