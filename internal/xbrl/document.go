// Package xbrl extracts tagged financial facts from inline-tagged
// disclosure documents and assembles flat per-company records from
// them.
package xbrl

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Fact is one inline-tagged element: qualified tag name, context
// reference, optional sign indicator, and raw text. Facts live only
// for the duration of one document pass.
type Fact struct {
	Name    string
	Context string
	Sign    string
	Text    string
}

// Namespace returns the taxonomy prefix of the fact name.
func (f Fact) Namespace() string {
	if i := strings.IndexByte(f.Name, ':'); i >= 0 {
		return f.Name[:i]
	}
	return ""
}

// LocalName returns the fact name with its namespace prefix removed.
func (f Fact) LocalName() string {
	if i := strings.IndexByte(f.Name, ':'); i >= 0 {
		return f.Name[i+1:]
	}
	return f.Name
}

// Document indexes the tagged facts of one document for tag and
// context lookup while preserving document order.
type Document struct {
	facts  []Fact
	byName map[string][]int
}

// ParseDocument reads an inline-tagged XHTML document and lifts every
// element carrying a namespace-qualified name attribute into a Fact.
// Elements whose name attribute has no namespace prefix, such as form
// inputs, are not facts and are skipped.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "xbrl: parse document")
	}

	d := &Document{byName: make(map[string][]int)}
	doc.Find("[name]").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if !strings.Contains(name, ":") {
			return
		}
		d.byName[name] = append(d.byName[name], len(d.facts))
		d.facts = append(d.facts, Fact{
			Name:    name,
			Context: sel.AttrOr("contextref", ""),
			Sign:    sel.AttrOr("sign", ""),
			Text:    strings.TrimSpace(sel.Text()),
		})
	})
	return d, nil
}

// Find returns the first fact tagged name whose context reference
// equals contextRef, in document order. An empty contextRef matches
// any context.
func (d *Document) Find(name, contextRef string) (Fact, bool) {
	for _, i := range d.byName[name] {
		if contextRef == "" || d.facts[i].Context == contextRef {
			return d.facts[i], true
		}
	}
	return Fact{}, false
}

// Namespace returns every fact whose qualified name carries the given
// taxonomy prefix, in document order.
func (d *Document) Namespace(prefix string) []Fact {
	p := prefix + ":"
	var out []Fact
	for _, f := range d.facts {
		if strings.HasPrefix(f.Name, p) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of lifted facts.
func (d *Document) Len() int { return len(d.facts) }
