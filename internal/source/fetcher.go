package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrStatus is returned when an HTTP fetch answers with a non-2xx status
var ErrStatus = errors.New("unexpected http status")

// maxBody caps a single fetch, decks and stylesheets are small text documents
const maxBody = 32 << 20

// Fetcher performs the plain GETs used for the deck and the stylesheets.
// One attempt, no retry.
type Fetcher struct {
	client *http.Client
	log    *zap.Logger
}

// NewFetcher creates a fetcher, zero timeout means none
func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		log:    log.Named("fetch"),
	}
}

// Fetch returns the body behind ref: an http(s) URL, a file:// URL or a path
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	start := time.Now()
	data, err := f.fetch(ctx, ref)
	if err != nil {
		f.log.Warn("Fetch failed", zap.String("ref", ref), zap.Error(err))
		return nil, err
	}
	f.log.Debug("Fetched", zap.String("ref", ref), zap.Int("bytes", len(data)), zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, errors.New("empty reference")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.get(ctx, u.String())
		case "file":
			return readFile(u.Path)
		}
	}
	return readFile(ref)
}

func (f *Fetcher) get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request for %s: %w", ref, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d for %s", ErrStatus, resp.StatusCode, ref)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", ref, err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return data, nil
}

// Resolve interprets ref relative to base the way a browser resolves a
// relative URL against its page: absolute URLs and absolute paths are kept,
// everything else is joined with the directory of base.
func Resolve(base, ref string) string {
	if ref == "" || base == "" {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return ref
	}
	if filepath.IsAbs(ref) {
		return ref
	}

	if bu, err := url.Parse(base); err == nil && bu.Scheme != "" && len(bu.Scheme) > 1 {
		ru, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return bu.ResolveReference(ru).String()
	}

	dir := filepath.Dir(base)
	if dir == "." && !strings.ContainsRune(base, filepath.Separator) {
		return ref
	}
	return filepath.Join(dir, ref)
}
