//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// testConfig keeps the e2e runs on the built-in templates and off the log file
const testConfig = `version = 1

[transform]
processor = "builtin"
builtin = true

[logging]
level = "none"
`

// SlideSpec describes one page of a generated deck
type SlideSpec struct {
	Title string
	Text  string
	Steps []string
}

// CreateTestWorkspace creates a temporary workspace for a test
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// CreateDeck writes a deck and its configuration into the workspace and
// returns the deck path
func (tf *TUITestFramework) CreateDeck(name, title string, slides ...SlideSpec) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\"?>\n<presentation title=%q>\n", title)
	for _, s := range slides {
		fmt.Fprintf(&b, "  <page>\n    <title>%s</title>\n    <content>\n", s.Title)
		if s.Text != "" {
			fmt.Fprintf(&b, "      <p>%s</p>\n", s.Text)
		}
		if len(s.Steps) > 0 {
			b.WriteString("      <ul>\n")
			for _, step := range s.Steps {
				fmt.Fprintf(&b, "        <li class=\"incremental\">%s</li>\n", step)
			}
			b.WriteString("      </ul>\n")
		}
		b.WriteString("    </content>\n  </page>\n")
	}
	b.WriteString("</presentation>\n")

	deckPath := filepath.Join(tf.workspace, name)
	if err := os.MkdirAll(filepath.Dir(deckPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(deckPath, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	cfgPath := filepath.Join(filepath.Dir(deckPath), ".deckview.toml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0644); err != nil {
		return "", err
	}
	return deckPath, nil
}

// StandardDeck is three slides, the middle one with two steps
func (tf *TUITestFramework) StandardDeck() (string, error) {
	return tf.CreateDeck("deck.xml", "E2E Deck",
		SlideSpec{Title: "Opening", Text: "opening words"},
		SlideSpec{Title: "Agenda", Steps: []string{"first point", "second point"}},
		SlideSpec{Title: "Closing", Text: "closing words"},
	)
}
