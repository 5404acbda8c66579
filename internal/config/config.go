package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"

	"deckview/internal/domain"
	"deckview/internal/eventbus"
)

// FileName is the per-deck configuration file looked up next to the deck
const FileName = ".deckview.toml"

// Transform processors
const (
	ProcessorAuto     = "auto"
	ProcessorBuiltin  = "builtin"
	ProcessorXSLTProc = "xsltproc"
)

// Config represents the application configuration
type Config struct {
	Version     int               `toml:"version"`
	Deck        DeckSettings      `toml:"deck"`
	Stylesheets StylesheetRefs    `toml:"stylesheets"`
	Transform   TransformSettings `toml:"transform"`
	UISettings  UISettings        `toml:"ui"`
	Logging     LoggingConfig     `toml:"logging"`
}

// DeckSettings points at the slide deck
type DeckSettings struct {
	Source string `toml:"source"`
}

// StylesheetRefs locate the paging and content stylesheets.
// Empty refs select the stylesheets built into the binary.
type StylesheetRefs struct {
	Paging  string `toml:"paging"`
	Content string `toml:"content"`
}

// TransformSettings controls transform engine selection
type TransformSettings struct {
	Processor string `toml:"processor"`
	Builtin   bool   `toml:"builtin"`
	Timeout   string `toml:"timeout"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	FontScaling                     bool `toml:"font_scaling"`
	HTMLContent                     bool `toml:"html_content"`
	SelectFirstIncrementWhenBacking bool `toml:"select_first_increment_when_backing"`
	Sidebar                         bool `toml:"sidebar"`
}

// Display returns the settings the UI can apply while running
func (u UISettings) Display() domain.DisplaySettings {
	return domain.DisplaySettings{
		Sidebar:                u.Sidebar,
		FontScaling:            u.FontScaling,
		SelectFirstWhenBacking: u.SelectFirstIncrementWhenBacking,
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a new config service rooted in the user config directory
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "deckview", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service that announces every
// successful load on the bus
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Path returns the default configuration file location
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the default location.
// A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if cs.bus != nil {
			cs.bus.Publish(eventbus.ConfigLoadedEvent{Display: cfg.UISettings.Display()})
		}
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path on top of the defaults
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: path, Display: cfg.UISettings.Display()})
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once
func (c *Config) Validate() error {
	var err error
	if c.Version != 1 {
		err = multierr.Append(err, fmt.Errorf("unsupported config version %d", c.Version))
	}
	switch c.Transform.Processor {
	case ProcessorAuto, ProcessorBuiltin, ProcessorXSLTProc:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown transform processor %q", c.Transform.Processor))
	}
	if c.Transform.Processor == ProcessorBuiltin && !c.Transform.Builtin {
		err = multierr.Append(err, errors.New("processor \"builtin\" requires transform.builtin = true"))
	}
	if _, perr := c.Transform.TimeoutDuration(); perr != nil {
		err = multierr.Append(err, perr)
	}
	err = multierr.Append(err, c.Logging.Validate())
	return err
}

// TimeoutDuration parses the fetch/transform timeout, zero means no timeout
func (t TransformSettings) TimeoutDuration() (time.Duration, error) {
	if t.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid transform timeout %q: %w", t.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative transform timeout %q", t.Timeout)
	}
	return d, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Deck: DeckSettings{
			Source: "xml/deck.xml",
		},
		Transform: TransformSettings{
			Processor: ProcessorAuto,
			Builtin:   true,
			Timeout:   "10s",
		},
		UISettings: UISettings{
			FontScaling:                     true,
			HTMLContent:                     true,
			SelectFirstIncrementWhenBacking: true,
			Sidebar:                         true,
		},
		Logging: LoggingConfig{
			Level:       "normal",
			Destination: "deckview.log",
			Mode:        "append",
		},
	}
}
