// Package transform turns the loaded deck into HTML fragments. Two engines
// implement the same contract; one is picked at startup from what the host
// offers and used for every request afterwards.
package transform

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"deckview/internal/config"
	"deckview/internal/source"
)

// ErrNoTransform means neither transform capability is available
var ErrNoTransform = errors.New("no transform capability available")

// Stylesheet parameter names, shared by both engines
const (
	ParamPageNo          = "pageNo"
	ParamPrintVersionURL = "printVersionURL"
)

// Request describes one transform
type Request struct {
	Stylesheet string // stylesheet reference, already resolved
	Deck       *source.Deck
	Page       int  // 0 when rendering unparameterized
	Paging     bool // paging/navigation stylesheet
}

// Params returns the stylesheet parameters for the request
func (r Request) Params() map[string]string {
	params := make(map[string]string, 2)
	if r.Page > 0 {
		params[ParamPageNo] = strconv.Itoa(r.Page)
	}
	if r.Paging && r.Deck != nil {
		params[ParamPrintVersionURL] = r.Deck.Ref
	}
	return params
}

// Engine applies a stylesheet to the deck and returns markup
type Engine interface {
	Name() string
	Transform(ctx context.Context, req Request) (string, error)
}

// LookPathFunc matches exec.LookPath
type LookPathFunc func(file string) (string, error)

// Options drive engine selection
type Options struct {
	Processor   string
	Builtin     bool
	Stylesheets config.StylesheetRefs
	Fetcher     *source.Fetcher
	LookPath    LookPathFunc
	Log         *zap.Logger
}

// Select detects the host capabilities once and returns the engine to use
func Select(opts Options) (Engine, error) {
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	log := opts.Log.Named("transform")

	xsltproc := func() (Engine, bool) {
		path, err := opts.LookPath(xsltprocBinary)
		if err != nil {
			log.Debug("xsltproc not available", zap.Error(err))
			return nil, false
		}
		return newXSLTProcEngine(path, opts.Fetcher, log), true
	}
	builtin := func() (Engine, bool) {
		if !opts.Builtin {
			return nil, false
		}
		return newTemplateEngine(opts.Fetcher, log), true
	}

	var (
		e  Engine
		ok bool
	)
	switch opts.Processor {
	case config.ProcessorXSLTProc:
		if e, ok = xsltproc(); !ok {
			e, ok = builtin()
		}
	case config.ProcessorBuiltin:
		e, ok = builtin()
	default:
		// xsltproc needs real XSLT stylesheets, the embedded ones are templates
		if opts.Stylesheets.Paging != "" && opts.Stylesheets.Content != "" {
			e, ok = xsltproc()
		}
		if !ok {
			e, ok = builtin()
		}
	}
	if !ok {
		return nil, ErrNoTransform
	}
	log.Info("Transform engine selected", zap.String("engine", e.Name()))
	return e, nil
}
