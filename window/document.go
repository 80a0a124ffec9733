package window

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/vibewindow/origin"
)

// Document is the window's view of its active document: the URL, the
// origin derived from it, and a parsed element tree for named-property
// lookup. The full document/navigation machinery lives outside this
// module; this is the narrow slice the window consults.
type Document struct {
	url    string
	origin origin.Origin
	root   *html.Node
}

// NewDocument creates a document for the given URL with an optional HTML
// source. URLs that carry no authority (about:blank and friends) get an
// opaque origin.
func NewDocument(rawURL, source string) (*Document, error) {
	o, err := origin.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	var root *html.Node
	if source != "" {
		root, err = html.Parse(strings.NewReader(source))
		if err != nil {
			return nil, err
		}
	}

	return &Document{url: rawURL, origin: o, root: root}, nil
}

// AboutBlank returns the initial document every fresh window starts with.
func AboutBlank() *Document {
	return &Document{url: "about:blank", origin: origin.NewOpaque()}
}

// URL returns the document's URL.
func (d *Document) URL() string {
	return d.url
}

// Origin returns the document's origin.
func (d *Document) Origin() origin.Origin {
	return d.origin
}

// SetURL performs the URL-and-history-update slice of navigation: the
// document keeps its tree but records the new URL.
func (d *Document) SetURL(rawURL string) {
	d.url = rawURL
}

// namedElements lists the element types whose name attribute exposes them
// as window named properties.
var namedElements = map[atom.Atom]bool{
	atom.A:        true,
	atom.Area:     true,
	atom.Embed:    true,
	atom.Form:     true,
	atom.Frame:    true,
	atom.Frameset: true,
	atom.Iframe:   true,
	atom.Img:      true,
	atom.Object:   true,
}

// NamedItem finds the first element, in tree order, exposed under the
// given name: exposed element types matched by name attribute, or any
// element matched by id. Returns nil if nothing matches.
func (d *Document) NamedItem(name string) *html.Node {
	if d.root == nil || name == "" {
		return nil
	}
	return findNamed(d.root, name)
}

func findNamed(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				if attr.Val == name && namedElements[n.DataAtom] {
					return n
				}
			case "id":
				if attr.Val == name {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNamed(c, name); found != nil {
			return found
		}
	}
	return nil
}
