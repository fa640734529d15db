// Package i18n provides the message catalogue used to render every
// user-visible string in the pipeline by stable key, with language
// fallback: mergo.Merge fills missing keys from an English base, and
// jibber_jabber detects the system locale when no override is given.
// There is no package-level singleton; the Catalogue is constructed once
// in cmd/netsuke's main and threaded down through the pipeline as a
// capability object, and SetActive returns a scope guard so tests can
// swap locales without leaking state between them.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cloudfoundry/jibber_jabber"
	"github.com/imdario/mergo"
)

// messages is a flat key -> format-string map for one locale.
type messages map[string]string

// Catalogue holds every loaded locale's messages plus the active locale.
// Every method is safe for concurrent use.
type Catalogue struct {
	mu     sync.RWMutex
	base   messages // English, always present, the fallback for every key
	locale map[string]messages
	active string
}

// New constructs a Catalogue with the built-in English base loaded and "en"
// active. Additional locales are added afterwards with Load; English-only
// operation is a fully supported mode.
func New() *Catalogue {
	return &Catalogue{
		base:   english(),
		locale: map[string]messages{"en": english()},
		active: "en",
	}
}

// Load reads "<locale>.json" from dir and merges it onto the English base
// so every key resolves even when a translation is incomplete. A missing
// file is not an error - the locale simply falls back entirely to English.
func (c *Catalogue) Load(dir, locale string) error {
	path := filepath.Join(dir, locale+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("i18n: reading %s: %w", path, err)
	}
	var loaded messages
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("i18n: parsing %s: %w", path, err)
	}
	merged := make(messages, len(c.base))
	for k, v := range c.base {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, loaded, mergo.WithOverride); err != nil {
		return fmt.Errorf("i18n: merging %s onto base: %w", path, err)
	}
	c.mu.Lock()
	c.locale[locale] = merged
	c.mu.Unlock()
	return nil
}

// DetectLocale resolves the preferred locale: NETSUKE_LOCALE if set, else
// the system locale via jibber_jabber, else "en".
func DetectLocale() string {
	if v := os.Getenv("NETSUKE_LOCALE"); v != "" {
		return v
	}
	if lang, err := jibber_jabber.DetectLanguage(); err == nil && lang != "" {
		return lang
	}
	return "en"
}

// SetActive changes the active locale and returns a restore func that puts
// the prior active locale back, a scope guard in place of a mutable
// process-global. Unknown locales are accepted
// (every key falls back to English) rather than rejected, since a locale
// with no file at all is a normal English-only configuration.
func (c *Catalogue) SetActive(locale string) (restore func()) {
	c.mu.Lock()
	prev := c.active
	c.active = locale
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.active = prev
		c.mu.Unlock()
	}
}

// T renders the message registered under key in the active locale,
// formatting args with fmt.Sprintf. An unknown key renders as the key
// itself wrapped in markers, so a missing translation is conspicuous in
// output rather than silently blank.
func (c *Catalogue) T(key string, args ...any) string {
	c.mu.RLock()
	active := c.active
	set, ok := c.locale[active]
	c.mu.RUnlock()
	var msg string
	if ok {
		msg, ok = set[key]
	}
	if !ok {
		msg, ok = c.base[key]
	}
	if !ok {
		return "??" + key + "??"
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// english is the built-in base translation set: every key the pipeline's
// error and status machinery looks up. Keys are stage/error identifiers,
// not prose, so lookups stay stable independent of message wording.
func english() messages {
	return messages{
		"stage.ingest":  "reading manifest",
		"stage.parse":   "parsing manifest",
		"stage.expand":  "expanding templates",
		"stage.decode":  "validating manifest",
		"stage.ir":      "building graph",
		"stage.synth":   "writing build file",
		"stage.execute": "running %s",

		"status.timing.summary": "pipeline finished in %s",
		"status.timing.stage":   "%s: %s",

		"error.manifest_not_found":   "manifest file not found at %s",
		"error.manifest_parse":       "could not parse manifest: %s",
		"error.manifest_structure":   "manifest has an invalid shape: %s",
		"error.template_evaluation":  "template expression failed: %s",
		"error.invalid_command":      "invalid command after interpolation: %s",
		"error.rule_not_found":       "no rule named %q",
		"error.duplicate_output":     "output %q is declared by more than one target",
		"error.cycle_detected":       "dependency cycle: %s",
		"error.missing_dependency":   "missing dependency: %s",
		"error.network_policy":       "network request blocked: %s",
		"error.helper_io":            "%s: %s",
		"error.executor_not_found":   "could not find the %s executable",
		"error.executor_exit":        "%s exited with status %d",
	}
}
