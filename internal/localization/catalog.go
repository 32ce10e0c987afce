// Package localization resolves default dialog button labels for a locale
// and generates the per-language label assets shipped with native builds.
package localization

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/arko-chat/nativetoolkit/internal/cache"
)

// Label keys every catalog is expected to carry.
const (
	KeyOK       = "ok"
	KeyCancel   = "cancel"
	KeyConfirm  = "confirm"
	KeyDelete   = "delete"
	KeyLogin    = "login"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyYes      = "yes"
	KeyNo       = "no"
)

var RequiredKeys = []string{
	KeyOK, KeyCancel, KeyConfirm, KeyDelete, KeyLogin, KeyUsername, KeyPassword,
}

var ErrEmptyCatalog = errors.New("localization: catalog has no languages")

//go:embed defaults.yaml
var defaultsYAML []byte

type Catalog struct {
	tags    []language.Tag
	tables  []map[string]string
	matcher language.Matcher
}

// Parse reads a YAML document mapping BCP 47 tags to key/label tables.
// English, when present, is the fallback language.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCatalog
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)
	if i := slices.Index(names, "en"); i > 0 {
		names = append([]string{"en"}, slices.Delete(names, i, i+1)...)
	}

	c := &Catalog{}
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", name, err)
		}
		c.tags = append(c.tags, tag)
		c.tables = append(c.tables, raw[name])
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

var loader = cache.NewLoader(10*time.Second, Load)

// LoadCached is Load memoized per path.
func LoadCached(path string) (*Catalog, error) {
	return loader.Get(path)
}

var builtin = func() *Catalog {
	c, err := Parse(defaultsYAML)
	if err != nil {
		panic(err)
	}
	return c
}()

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return builtin
}

func (c *Catalog) Languages() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Missing lists the required keys absent from each language.
func (c *Catalog) Missing() map[string][]string {
	out := make(map[string][]string)
	for i, t := range c.tags {
		for _, k := range RequiredKeys {
			if c.tables[i][k] == "" {
				out[t.String()] = append(out[t.String()], k)
			}
		}
	}
	return out
}

// Labels resolves the best language for locale. An empty or malformed
// locale gets the fallback language.
func (c *Catalog) Labels(locale string) Labels {
	idx := 0
	if tag, err := language.Parse(locale); err == nil {
		_, idx, _ = c.matcher.Match(tag)
	}
	return Labels{
		tag:      c.tags[idx],
		table:    c.tables[idx],
		fallback: c.tables[0],
	}
}

type Labels struct {
	tag      language.Tag
	table    map[string]string
	fallback map[string]string
}

func (l Labels) Language() string {
	return l.tag.String()
}

// Get returns the label for key, falling back to the default language and
// then to the key itself.
func (l Labels) Get(key string) string {
	if v := l.table[key]; v != "" {
		return v
	}
	if v := l.fallback[key]; v != "" {
		return v
	}
	return key
}

// Or returns v unless it is empty, in which case it returns Get(key).
func (l Labels) Or(v, key string) string {
	if v != "" {
		return v
	}
	if l.table == nil {
		return ""
	}
	return l.Get(key)
}
