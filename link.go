package linkpub

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a single curated link served by the dispenser.
type Link struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// LinkMap maps a page URL (as seen in the request URI) to the ordered links
// shown on that page. It is always replaced wholesale, never merged.
type LinkMap map[string][]Link

// Clone returns a deep copy of the map.
func (m LinkMap) Clone() LinkMap {
	if m == nil {
		return nil
	}
	out := make(LinkMap, len(m))
	for page, links := range m {
		out[page] = append([]Link(nil), links...)
	}
	return out
}

// DecodeLinkMap parses a dispenser payload.
// The payload must be a JSON object whose values are arrays of
// {"url", "title"} objects. Returns EINVALID for any other shape.
func DecodeLinkMap(body []byte) (LinkMap, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, Errorf(EINVALID, "empty link payload")
	}
	var m LinkMap
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, Errorf(EINVALID, "decode link payload: %v", err)
	}
	// A literal null unmarshals without error.
	if m == nil {
		return nil, Errorf(EINVALID, "link payload is not an object")
	}
	return m, nil
}

// RenderLinks writes each link as an HTML anchor. Both the URL and the
// title are escaped.
func RenderLinks(w io.Writer, links []Link) error {
	for _, l := range links {
		a := &html.Node{
			Type:     html.ElementNode,
			Data:     "a",
			DataAtom: atom.A,
			Attr:     []html.Attribute{{Key: "href", Val: l.URL}},
		}
		a.AppendChild(&html.Node{Type: html.TextNode, Data: l.Title})
		if err := html.Render(w, a); err != nil {
			return err
		}
	}
	return nil
}

// RenderLinksString is like RenderLinks but returns the markup.
func RenderLinksString(links []Link) string {
	var b strings.Builder
	_ = RenderLinks(&b, links) // strings.Builder never fails
	return b.String()
}
