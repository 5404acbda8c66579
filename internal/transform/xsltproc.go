package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"go.uber.org/zap"

	"deckview/internal/source"
)

const xsltprocBinary = "xsltproc"

// xsltprocEngine applies real XSLT through the host's libxslt
type xsltprocEngine struct {
	path    string
	fetcher *source.Fetcher
	log     *zap.Logger
}

func newXSLTProcEngine(path string, f *source.Fetcher, log *zap.Logger) *xsltprocEngine {
	return &xsltprocEngine{path: path, fetcher: f, log: log.Named("xsltproc")}
}

func (e *xsltprocEngine) Name() string { return "xsltproc" }

func (e *xsltprocEngine) Transform(ctx context.Context, req Request) (string, error) {
	if req.Deck == nil {
		return "", fmt.Errorf("no deck to transform")
	}
	if req.Stylesheet == "" {
		return "", fmt.Errorf("xsltproc needs a stylesheet reference")
	}

	sheet, cleanup, err := e.localStylesheet(ctx, req.Stylesheet)
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := e.args(req, sheet)
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stdin = bytes.NewReader(req.Deck.Raw)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug("Running xsltproc", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return "", fmt.Errorf("xsltproc failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("xsltproc failed: %w", err)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		e.log.Warn("xsltproc reported", zap.String("stderr", msg))
	}
	return stripDeclaration(stdout.String()), nil
}

func (e *xsltprocEngine) args(req Request, sheet string) []string {
	params := req.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{"--nonet"}
	for _, k := range keys {
		args = append(args, "--stringparam", k, params[k])
	}
	return append(args, sheet, "-")
}

// localStylesheet hands xsltproc a file path. Local stylesheets are used in
// place so relative imports keep working, anything else is fetched into a
// temp file.
func (e *xsltprocEngine) localStylesheet(ctx context.Context, ref string) (string, func(), error) {
	if !strings.Contains(ref, "://") {
		if _, err := os.Stat(ref); err != nil {
			return "", nil, fmt.Errorf("unable to read stylesheet: %w", err)
		}
		return ref, func() {}, nil
	}

	data, err := e.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", nil, fmt.Errorf("unable to fetch stylesheet: %w", err)
	}
	f, err := os.CreateTemp("", "deckview-*.xsl")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil {
			e.log.Debug("Unable to remove temp stylesheet", zap.Error(err))
		}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}

// stripDeclaration drops the XML declaration xsltproc emits for xml output
func stripDeclaration(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			s = s[i+2:]
		}
	}
	return strings.TrimSpace(s)
}
