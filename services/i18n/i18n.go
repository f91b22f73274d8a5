package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed *.json
var fs embed.FS

// Supported display languages, in selector order.
var Languages = []string{"pt", "en", "es"}

// translations stores flattened keys: "pt" -> "nav.home" -> "Início"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	defaultLang  = "pt"
)

// Load initializes the translations from the embedded JSON files and checks
// that every language defines the same key set.
func Load() error {
	mutex.Lock()
	defer mutex.Unlock()

	loaded, err := loadFS()
	if err != nil {
		return err
	}
	if missing := missingKeys(loaded); len(missing) > 0 {
		return fmt.Errorf("locales are out of sync: %s", strings.Join(missing, ", "))
	}

	translations = loaded
	return nil
}

func loadFS() (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loaded := make(map[string]map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var result map[string]any
		if err := json.Unmarshal(content, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", result, flat)
		loaded[lang] = flat
		log.Info().Str("lang", lang).Int("keys", len(flat)).Msg("Loaded locale")
	}

	for _, lang := range Languages {
		if _, ok := loaded[lang]; !ok {
			return nil, fmt.Errorf("missing locale file for %q", lang)
		}
	}
	return loaded, nil
}

// missingKeys lists "lang:key" pairs present in some language but not in lang.
func missingKeys(loaded map[string]map[string]string) []string {
	all := make(map[string]struct{})
	for _, flat := range loaded {
		for k := range flat {
			all[k] = struct{}{}
		}
	}

	var missing []string
	for lang, flat := range loaded {
		for k := range all {
			if _, ok := flat[k]; !ok {
				missing = append(missing, lang+":"+k)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

// flatten recursively flattens a nested map into dot-notation keys.
func flatten(prefix string, nested map[string]any, result map[string]string) {
	for k, v := range nested {
		newKey := k
		if prefix != "" {
			newKey = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]any:
			flatten(newKey, child, result)
		case string:
			result[newKey] = child
		default:
			// Numbers and booleans are stored as their text form
			result[newKey] = fmt.Sprintf("%v", child)
		}
	}
}

// T retrieves a translation for the given key using the language from the context.
// Supports simple named variable replacement {name} if args are provided.
func T(ctx context.Context, key string, args ...map[string]any) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate retrieves a translation for a specific language code. A key the
// language does not define is returned unchanged.
func Translate(lang, key string, args ...map[string]any) string {
	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return format(val, args...)
		}
	}
	return key
}

// Lookup is Translate without placeholder support, matching leadform.Translator.
func Lookup(lang, key string) string {
	return Translate(lang, key)
}

// format replaces {var} placeholders with values from args if present.
func format(text string, args ...map[string]any) string {
	if len(args) == 0 {
		return text
	}

	vars := args[0]
	for k, v := range vars {
		placeholder := "{" + k + "}"
		valStr := fmt.Sprintf("%v", v)
		text = strings.ReplaceAll(text, placeholder, valStr)
	}
	return text
}

// IsSupported reports whether lang is one of Languages.
func IsSupported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// DefaultLanguage returns the fallback display language.
func DefaultLanguage() string {
	return defaultLang
}

// SetDefaultLanguage changes the fallback language; unsupported values are ignored.
func SetDefaultLanguage(lang string) {
	if IsSupported(lang) {
		defaultLang = lang
	}
}

// Keys for context storage
type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale returns a copy of ctx carrying lang.
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale extracts the locale from the context, defaulting to DefaultLanguage.
func GetLocale(ctx context.Context) string {
	if val := ctx.Value(LocaleContextKey); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultLang
}
