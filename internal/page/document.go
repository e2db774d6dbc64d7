package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse an HTML page into a DOM tree
- Address elements by id the way document.getElementById does
- Replace an element's text content
- Render the tree back to bytes

Rendering goes through the HTML5 serializer, so a page is normalized on its
first pass (implied <head>/<body> are made explicit) and is stable on every
pass after that.
*/

type Document struct {
	doc *goquery.Document
}

// Load parses an HTML page from r.
func Load(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &PageError{
			Message: fmt.Sprintf("failed to parse HTML: %v", err),
			Cause:   ErrCauseParseFailure,
		}
	}
	return &Document{doc: doc}, nil
}

// LoadFile parses the HTML page stored at path.
func LoadFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &PageError{
			Message: err.Error(),
			Cause:   ErrCauseReadFailure,
			Path:    path,
		}
	}
	d, err := Load(bytes.NewReader(content))
	if err != nil {
		var pageErr *PageError
		if errors.As(err, &pageErr) {
			pageErr.Path = path
		}
		return nil, err
	}
	return d, nil
}

// elementByID returns the first element whose id attribute equals id.
// Attribute comparison avoids CSS escaping of ids such as "a.b" or "1st".
func (d *Document) elementByID(id string) *goquery.Selection {
	return d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
}

// HasElement reports whether an element with the given id exists.
func (d *Document) HasElement(id string) bool {
	return d.elementByID(id).Length() > 0
}

// SetTextByID replaces the text content of the element with the given id.
// It returns false, and leaves the document untouched, when there is no
// such element.
func (d *Document) SetTextByID(id, text string) bool {
	el := d.elementByID(id)
	if el.Length() == 0 {
		return false
	}
	el.SetText(text)
	return true
}

// TextByID returns the text content of the element with the given id.
func (d *Document) TextByID(id string) (string, bool) {
	el := d.elementByID(id)
	if el.Length() == 0 {
		return "", false
	}
	return el.Text(), true
}

// Render serializes the document to w.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return &PageError{
				Message: fmt.Sprintf("failed to render HTML: %v", err),
				Cause:   ErrCauseRenderFailure,
			}
		}
	}
	return nil
}

// HTML returns the serialized document.
func (d *Document) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
