package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"deckview/internal/domain"
)

// ErrEmptyDeck is returned for a document without any page element
var ErrEmptyDeck = errors.New("deck has no pages")

// PageTag is the element counted as one slide
const PageTag = "page"

// Deck is a fetched slide deck. It is never modified after Parse, a reload
// produces a new Deck.
type Deck struct {
	Ref       string
	Raw       []byte
	Doc       *etree.Document
	PageCount int

	pages []*etree.Element
}

// Parse builds a deck from the fetched document
func Parse(ref string, data []byte) (*Deck, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse deck %s: %w", ref, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("unable to parse deck %s: no root element", ref)
	}

	pages := doc.FindElements("//" + PageTag)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDeck, ref)
	}

	return &Deck{
		Ref:       ref,
		Raw:       data,
		Doc:       doc,
		PageCount: len(pages),
		pages:     pages,
	}, nil
}

// Pages returns page elements in document order
func (d *Deck) Pages() []*etree.Element {
	return d.pages
}

// Page returns the 1-based page element or nil
func (d *Deck) Page(n int) *etree.Element {
	if n < 1 || n > len(d.pages) {
		return nil
	}
	return d.pages[n-1]
}

// Title is the root title attribute, or the text of a title child of the root
func (d *Deck) Title() string {
	root := d.Doc.Root()
	if t := root.SelectAttrValue("title", ""); t != "" {
		return t
	}
	if el := root.SelectElement("title"); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// Reader returns the raw document for the pager
func (d *Deck) Reader() *bytes.Reader {
	return bytes.NewReader(d.Raw)
}

// Info summarizes the deck for the UI
func (d *Deck) Info() domain.DeckInfo {
	return domain.DeckInfo{
		Ref:       d.Ref,
		Title:     d.Title(),
		PageCount: d.PageCount,
		Size:      int64(len(d.Raw)),
	}
}
