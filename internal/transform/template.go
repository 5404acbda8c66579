package transform

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/beevik/etree"
	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"deckview/internal/source"
)

//go:embed stylesheets/*.tmpl
var builtinStylesheets embed.FS

const (
	builtinPaging  = "stylesheets/paging.tmpl"
	builtinContent = "stylesheets/content.tmpl"
)

// Values is what a template stylesheet sees as its dot
type Values struct {
	Deck            *source.Deck
	Title           string
	PageCount       int
	PageNo          int
	Page            *etree.Element // nil unless PageNo is set
	PrintVersionURL string
	Params          map[string]string
}

// templateEngine runs Go text/template stylesheets in process
type templateEngine struct {
	fetcher *source.Fetcher
	log     *zap.Logger
}

func newTemplateEngine(f *source.Fetcher, log *zap.Logger) *templateEngine {
	return &templateEngine{fetcher: f, log: log.Named("builtin")}
}

func (e *templateEngine) Name() string { return "builtin" }

func (e *templateEngine) Transform(ctx context.Context, req Request) (string, error) {
	if req.Deck == nil {
		return "", fmt.Errorf("no deck to transform")
	}
	src, name, err := e.stylesheet(ctx, req)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Funcs(funcMap(req.Deck)).Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("unable to parse stylesheet %s: %w", name, err)
	}

	params := req.Params()
	values := Values{
		Deck:            req.Deck,
		Title:           req.Deck.Title(),
		PageCount:       req.Deck.PageCount,
		PageNo:          req.Page,
		Page:            req.Deck.Page(req.Page),
		PrintVersionURL: params[ParamPrintVersionURL],
		Params:          params,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to apply stylesheet %s: %w", name, err)
	}
	e.log.Debug("Transformed", zap.String("stylesheet", name), zap.Int("page", req.Page), zap.Int("bytes", buf.Len()))
	return buf.String(), nil
}

// stylesheet loads the template for req. XSLT sheets cannot be executed
// here, so they are swapped for the embedded templates.
func (e *templateEngine) stylesheet(ctx context.Context, req Request) ([]byte, string, error) {
	if isXSLT(req.Stylesheet) {
		e.log.Debug("XSLT stylesheet needs xsltproc, using the built-in template", zap.String("stylesheet", req.Stylesheet))
	} else if req.Stylesheet != "" {
		data, err := e.fetcher.Fetch(ctx, req.Stylesheet)
		if err != nil {
			return nil, "", fmt.Errorf("unable to fetch stylesheet: %w", err)
		}
		return data, req.Stylesheet, nil
	}
	name := builtinContent
	if req.Paging {
		name = builtinPaging
	}
	data, err := builtinStylesheets.ReadFile(name)
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

func isXSLT(ref string) bool {
	ext := strings.ToLower(path.Ext(ref))
	return ext == ".xsl" || ext == ".xslt"
}

// funcMap is sprig plus helpers to walk the deck
func funcMap(deck *source.Deck) template.FuncMap {
	fm := sprig.FuncMap()
	fm["pages"] = deck.Pages
	fm["page"] = deck.Page
	fm["child"] = func(el *etree.Element, tag string) *etree.Element {
		if el == nil {
			return nil
		}
		return el.SelectElement(tag)
	}
	fm["children"] = func(el *etree.Element, tag string) []*etree.Element {
		if el == nil {
			return nil
		}
		return el.SelectElements(tag)
	}
	fm["find"] = func(el *etree.Element, path string) []*etree.Element {
		if el == nil {
			return nil
		}
		return el.FindElements(path)
	}
	fm["attr"] = func(el *etree.Element, name string) string {
		if el == nil {
			return ""
		}
		return el.SelectAttrValue(name, "")
	}
	fm["text"] = elementText
	fm["pageTitle"] = func(el *etree.Element) string {
		if el == nil {
			return ""
		}
		if t := el.SelectElement("title"); t != nil {
			return elementText(t)
		}
		return el.SelectAttrValue("title", "")
	}
	fm["inner"] = inner
	return fm
}

// elementText is the trimmed text content of el and its descendants
func elementText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				collect(t)
			}
		}
	}
	collect(el)
	return strings.TrimSpace(b.String())
}

// inner serializes the children of el, the equivalent of xsl:copy-of node()
func inner(el *etree.Element) (string, error) {
	if el == nil {
		return "", nil
	}
	doc := etree.NewDocument()
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			doc.AddChild(t.Copy())
		case *etree.CharData:
			doc.CreateText(t.Data)
		}
	}
	return doc.WriteToString()
}
