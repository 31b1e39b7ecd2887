// Package phrases loads the localized phrase catalog used for every line of
// text the gateway or the reference engine sends to chat.
//
// Catalog files are YAML, key → language → string. Lookup order:
//  1. The path given in config (if any)
//  2. ./phrases.yml (relative to working directory)
//  3. The embedded catalog compiled into the binary
//
// A missing key is a configuration defect, not a user-facing failure:
// MustPhrase panics, and Validate is run at startup so the defect is caught
// before any chat traffic flows.
package phrases

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yml
var embedded []byte

// RequiredKeys is the full set of keys the gateway and the reference engine
// look up. Validate checks each one against the configured language.
var RequiredKeys = []string{
	"game:advertise",
	"game:already-started",
	"game:bot-added",
	"game:cannot-remove",
	"game:cannot-stop",
	"game:cannot-transfer",
	"game:discard",
	"game:no-survivors",
	"game:pass",
	"game:play",
	"game:player-joined",
	"game:player-removed",
	"game:ready",
	"game:started",
	"game:status",
	"game:stopped",
	"game:transferred",
	"game:winner",
}

// Catalog is an immutable phrase table for one configured language.
type Catalog struct {
	lang    string
	entries map[string]map[string]string
}

// Load builds a catalog for lang. path may be empty; the embedded catalog is
// the fallback.
func Load(path, lang string) (*Catalog, error) {
	data := embedded
	for _, candidate := range []string{path, "phrases.yml"} {
		if candidate == "" {
			continue
		}
		if b, err := os.ReadFile(candidate); err == nil {
			data = b
			break
		}
	}

	entries := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse phrase catalog: %w", err)
	}
	return &Catalog{lang: lang, entries: entries}, nil
}

// Lang returns the catalog's configured language code.
func (c *Catalog) Lang() string { return c.lang }

// Phrase returns the localized string for key.
func (c *Catalog) Phrase(key string) (string, error) {
	langs, ok := c.entries[key]
	if !ok {
		return "", fmt.Errorf("invalid phrase: %s", key)
	}
	text, ok := langs[c.lang]
	if !ok {
		return "", fmt.Errorf("phrase %s has no %q translation", key, c.lang)
	}
	return text, nil
}

// MustPhrase is Phrase for keys that are checked by Validate at startup.
// Panics on a missing key: that is a programming or packaging defect.
func (c *Catalog) MustPhrase(key string) string {
	text, err := c.Phrase(key)
	if err != nil {
		panic(err)
	}
	return text
}

// Validate checks every required key against the configured language so a
// broken catalog fails at startup instead of mid-game.
func (c *Catalog) Validate() error {
	for _, key := range RequiredKeys {
		if _, err := c.Phrase(key); err != nil {
			return err
		}
	}
	return nil
}
