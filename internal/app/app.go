package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"deckview/internal/config"
	"deckview/internal/discovery"
	"deckview/internal/eventbus"
	"deckview/internal/source"
	"deckview/internal/transform"
	"deckview/internal/ui"
)

const appName = "deckview"

// version is set by the linker
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

// Command builds the command line application
func Command() *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "present XML slide decks in the terminal",
		Version:         getVersion() + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		ArgsUsage:       "[DECK]",
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Action:          run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML)"},
			&cli.StringFlag{Name: "deck", Usage: "deck `REF`: URL, file or directory", Sources: cli.EnvVars("DECKVIEW_DECK")},
			&cli.StringFlag{Name: "paging", Usage: "paging stylesheet `REF`"},
			&cli.StringFlag{Name: "content", Usage: "content stylesheet `REF`"},
			&cli.StringFlag{Name: "processor", Usage: "stylesheet processor: auto, builtin or xsltproc"},
			&cli.BoolFlag{Name: "no-scaling", Usage: "do not scale slide margins with the window"},
			&cli.BoolFlag{Name: "no-sidebar", Usage: "hide the navigation sidebar"},
			&cli.BoolFlag{Name: "raw-markup", Usage: "turn markup found in slide text into elements"},
			&cli.BoolFlag{Name: "start-at-last-step", Usage: "entering a slide backwards starts on its last step"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
	}
}

// initializeAppContext prepares configuration and logging after the
// command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := EnvFromContext(ctx)

	deck := deckArg(cmd)
	cfg, path, err := loadConfig(config.NewConfigService(), cmd.String("config"), deck)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return ctx, fmt.Errorf("invalid command line: %w", err)
	}
	env.Cfg, env.CfgPath = cfg, path

	if deck == "" {
		deck = configDeck(cfg, path)
	}
	env.DeckRef = deck

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.Log = log.With(zap.String("session", env.SessionID))
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", getVersion()), zap.String("runtime", runtime.Version()))
	if path == "" {
		env.Log.Info("Using defaults (no configuration file)")
	} else {
		env.Log.Info("Using configuration", zap.String("path", path))
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.RestoreStdLog()
	return nil
}

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := EnvFromContext(ctx)
	if env.Cfg != nil && env.Cfg.Logging.Level != "none" {
		env.Log.Error("Program ended with error", zap.Error(err))
	}
}

// run is the default action: present the deck
func run(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)
	cfg, log := env.Cfg, env.Log

	ref, err := resolveDeck(ctx, env.DeckRef, discovery.NewScanner(log), promptDeck, log)
	if err != nil {
		return err
	}

	timeout, err := cfg.Transform.TimeoutDuration()
	if err != nil {
		return err
	}
	fetcher := source.NewFetcher(timeout, log)

	engine, err := transform.Select(transform.Options{
		Processor:   cfg.Transform.Processor,
		Builtin:     cfg.Transform.Builtin,
		Stylesheets: cfg.Stylesheets,
		Fetcher:     fetcher,
		Log:         log,
	})
	if errors.Is(err, transform.ErrNoTransform) {
		log.Warn("No stylesheet processor available", zap.String("processor", cfg.Transform.Processor))
		if !confirmRaw() {
			return err
		}
		return showRaw(ctx, fetcher, ref)
	}
	if err != nil {
		return err
	}

	return present(ctx, cfg, env.CfgPath, log, fetcher, engine, ref)
}

// showRaw pages through the untransformed deck, the fallback when nothing
// can apply the stylesheets
func showRaw(ctx context.Context, fetcher *source.Fetcher, ref string) error {
	deck, err := source.Load(ctx, fetcher, ref)
	if err != nil {
		return err
	}
	return ui.RunPager(deck.Reader(), ref)
}

// reloadConfigOnRequest reads the configuration file again whenever the deck
// is reloaded, so display settings can be tuned while presenting. Running
// on defaults there is nothing to re-read.
func reloadConfigOnRequest(bus eventbus.EventBus, svc config.ConfigService, path string, log *zap.Logger) func() {
	if path == "" {
		return func() {}
	}
	return bus.Subscribe(eventbus.EventDeckLoadRequested, func(eventbus.DomainEvent) {
		if _, err := svc.LoadFromPath(path); err != nil {
			log.Warn("Unable to reload configuration", zap.String("path", path), zap.Error(err))
			bus.Publish(eventbus.ErrorEvent{Op: "config", Message: "unable to reload configuration", Err: err})
		}
	})
}

// present wires the services to the terminal UI and runs it until quit
func present(ctx context.Context, cfg *config.Config, cfgPath string, log *zap.Logger, fetcher *source.Fetcher, engine transform.Engine, ref string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := eventbus.New(log)
	defer bus.Close()

	timeout, _ := cfg.Transform.TimeoutDuration()
	src := source.NewService(ctx, bus, fetcher, log)
	_ = transform.NewService(ctx, bus, engine, src, transform.ServiceOptions{
		Stylesheets: cfg.Stylesheets,
		HTMLContent: cfg.UISettings.HTMLContent,
		Timeout:     timeout,
	}, log)

	cfg.Deck.Source = ref
	model := ui.NewModel(bus, cfg, ui.Options{
		Engine: engine.Name(),
		Decks:  src,
		Log:    log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Forward the events the UI reacts to
	forward := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventDeckLoaded,
		eventbus.EventRenderCompleted,
		eventbus.EventConfigLoaded,
		eventbus.EventError,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}
	bus.Subscribe(eventbus.EventPageChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.PageChangedEvent); ok {
			log.Debug("Page changed", zap.Int("from", ev.From), zap.Int("to", ev.To))
		}
	})

	defer reloadConfigOnRequest(bus, config.NewConfigServiceWithBus(bus), cfgPath, log)()

	go src.Start(ctx, ref)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
