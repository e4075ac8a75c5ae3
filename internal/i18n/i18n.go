package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/text/language"
)

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []language.Tag
	matcher   language.Matcher
}

// LoadFS reads one {lang}.json dictionary per supported language from fsys.
// Only the fallback dictionary is mandatory.
func LoadFS(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	b := &Bundle{
		dict:     map[string]map[string]string{},
		fallback: fallback,
	}
	for _, l := range supported {
		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}

	// The fallback goes first so the matcher prefers it on ties.
	langs := b.Supported()
	sort.SliceStable(langs, func(i, j int) bool { return langs[i] == fallback && langs[j] != fallback })
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %s: %w", l, err)
		}
		b.supported = append(b.supported, tag)
	}
	b.matcher = language.NewMatcher(b.supported)
	return b, nil
}

// Supported lists the loaded languages in sorted order.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.dict))
	for k := range b.dict {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf formats the translation for key with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Resolve maps a configured language such as "en-US" onto the closest
// loaded dictionary.
func (b *Bundle) Resolve(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.fallback
	}
	base, _ := b.supported[idx].Base()
	if _, ok := b.dict[b.supported[idx].String()]; ok {
		return b.supported[idx].String()
	}
	if _, ok := b.dict[base.String()]; ok {
		return base.String()
	}
	return b.fallback
}

// Labels is a single-language view of a bundle.
type Labels struct {
	bundle *Bundle
	lang   string
}

// For returns the label view for lang after resolving it.
func (b *Bundle) For(lang string) Labels {
	return Labels{bundle: b, lang: b.Resolve(lang)}
}

// Lang returns the resolved language.
func (l Labels) Lang() string { return l.lang }

// T translates key.
func (l Labels) T(key string) string {
	if l.bundle == nil {
		return key
	}
	return l.bundle.T(l.lang, key)
}

// Tf translates and formats key.
func (l Labels) Tf(key string, args ...any) string {
	return fmt.Sprintf(l.T(key), args...)
}
