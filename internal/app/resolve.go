package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/manifoldco/promptui"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"deckview/internal/config"
	"deckview/internal/discovery"
	"deckview/internal/source"
)

// ErrNoDeck is returned when a directory holds no deck document
var ErrNoDeck = errors.New("no deck found")

// ChooseFunc picks one of several decks found in a directory
type ChooseFunc func(decks []discovery.Candidate) (int, error)

// deckArg returns the deck named on the command line, positional
// argument first
func deckArg(cmd *cli.Command) string {
	if cmd.NArg() > 0 {
		return cmd.Args().First()
	}
	return cmd.String("deck")
}

// isLocal reports whether ref names a filesystem path rather than a URL
func isLocal(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) <= 1 {
		return true
	}
	return u.Scheme == "file"
}

// deckConfigPath is where a configuration next to the deck would live
func deckConfigPath(ref string) string {
	if ref == "" || !isLocal(ref) {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		ref = u.Path
	}
	if fi, err := os.Stat(ref); err == nil && fi.IsDir() {
		return filepath.Join(ref, config.FileName)
	}
	return filepath.Join(filepath.Dir(ref), config.FileName)
}

// loadConfig finds the configuration: the explicit file, then the file
// next to the deck, then the user configuration. It returns the path used,
// empty for defaults.
func loadConfig(svc config.ConfigService, explicit, deck string) (*config.Config, string, error) {
	if explicit != "" {
		cfg, err := svc.LoadFromPath(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	if p := deckConfigPath(deck); p != "" {
		if _, err := os.Stat(p); err == nil {
			cfg, err := svc.LoadFromPath(p)
			if err != nil {
				return nil, "", err
			}
			return cfg, p, nil
		}
	}

	cfg, err := svc.Load()
	if err != nil {
		return nil, "", err
	}
	path := ""
	if _, err := os.Stat(svc.Path()); err == nil {
		path = svc.Path()
	}
	return cfg, path, nil
}

// applyFlags lets command line flags override the configuration
func applyFlags(cfg *config.Config, cmd *cli.Command) error {
	if cmd.IsSet("paging") {
		cfg.Stylesheets.Paging = cmd.String("paging")
	}
	if cmd.IsSet("content") {
		cfg.Stylesheets.Content = cmd.String("content")
	}
	if cmd.IsSet("processor") {
		cfg.Transform.Processor = cmd.String("processor")
	}
	if cmd.Bool("no-scaling") {
		cfg.UISettings.FontScaling = false
	}
	if cmd.Bool("raw-markup") {
		cfg.UISettings.HTMLContent = false
	}
	if cmd.Bool("start-at-last-step") {
		cfg.UISettings.SelectFirstIncrementWhenBacking = false
	}
	if cmd.Bool("no-sidebar") {
		cfg.UISettings.Sidebar = false
	}
	if cmd.Bool("debug") {
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}

// resolveDeck turns the deck reference into something the content source
// can fetch. Directories are scanned for decks, several candidates are
// offered to choose.
func resolveDeck(ctx context.Context, ref string, scanner *discovery.Scanner, choose ChooseFunc, log *zap.Logger) (string, error) {
	if ref == "" {
		return "", errors.New("no deck given")
	}
	if !isLocal(ref) {
		return ref, nil
	}
	fi, err := os.Stat(ref)
	if err != nil || !fi.IsDir() {
		// missing files are reported by the content source
		return ref, nil
	}

	decks, err := scanner.Scan(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("unable to scan %s: %w", ref, err)
	}
	switch len(decks) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoDeck, ref)
	case 1:
		log.Info("Using the only deck found", zap.String("dir", ref), zap.String("deck", decks[0].Path))
		return decks[0].Path, nil
	}

	i, err := choose(decks)
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(decks) {
		return "", fmt.Errorf("invalid deck choice %d", i)
	}
	return decks[i].Path, nil
}

// promptDeck asks on the terminal which deck to show
func promptDeck(decks []discovery.Candidate) (int, error) {
	items := make([]string, len(decks))
	for i, d := range decks {
		items[i] = fmt.Sprintf("%s (%d pages, %s)", d.Name, d.Pages, humanize.Bytes(uint64(d.Size)))
	}
	prompt := promptui.Select{
		Label: "Select deck",
		Items: items,
		Size:  10,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("deck selection: %w", err)
	}
	return i, nil
}

// confirmRaw asks whether to page through the untransformed deck when no
// transform engine is available
func confirmRaw() bool {
	prompt := promptui.Prompt{
		Label:     "No stylesheet processor available. Show the raw deck instead",
		IsConfirm: true,
		Default:   "y",
	}
	_, err := prompt.Run()
	return err == nil
}

// configDeck is the deck named by the configuration, relative to the file
// it came from
func configDeck(cfg *config.Config, cfgPath string) string {
	if cfgPath == "" {
		return cfg.Deck.Source
	}
	return source.Resolve(cfgPath, cfg.Deck.Source)
}
