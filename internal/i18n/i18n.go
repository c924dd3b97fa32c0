package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed locales
var locales embed.FS

// Params are substituted into a translation wherever {{NAME}} appears.
type Params map[string]any

// Translator resolves "namespace:KEY" keys (e.g. "giveaway/g-edit:USAGE")
// against per-language JSON bundles. Missing keys fall back to the fallback
// language and then to the key itself.
type Translator struct {
	fallback string
	// language -> namespace -> raw JSON document
	bundles map[string]map[string][]byte
}

// New loads the bundles embedded in the binary.
func New(fallback string) (*Translator, error) {
	sub, err := fs.Sub(locales, "locales")
	if err != nil {
		return nil, err
	}
	return NewFromFS(sub, fallback)
}

// NewFromFS loads <language>/<namespace>.json files from fsys.
func NewFromFS(fsys fs.FS, fallback string) (*Translator, error) {
	t := &Translator{
		fallback: fallback,
		bundles:  make(map[string]map[string][]byte),
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		lang, rest, ok := strings.Cut(p, "/")
		if !ok {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if !gjson.ValidBytes(data) {
			return fmt.Errorf("i18n: %s is not valid JSON", p)
		}

		if t.bundles[lang] == nil {
			t.bundles[lang] = make(map[string][]byte)
		}
		t.bundles[lang][strings.TrimSuffix(rest, ".json")] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, ok := t.bundles[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no bundle for fallback language %q", fallback)
	}
	return t, nil
}

// Languages lists the loaded language codes.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.bundles))
	for lang := range t.bundles {
		langs = append(langs, lang)
	}
	return langs
}

// Translate returns the text for key in lang with params applied.
func (t *Translator) Translate(lang, key string, params map[string]any) string {
	text, ok := t.lookup(lang, key)
	if !ok && lang != t.fallback {
		text, ok = t.lookup(t.fallback, key)
	}
	if !ok {
		return key
	}
	return interpolate(text, params)
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	namespace, name, ok := strings.Cut(key, ":")
	if !ok {
		return "", false
	}
	raw, ok := t.bundles[lang][namespace]
	if !ok {
		return "", false
	}
	res := gjson.GetBytes(raw, name)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

func interpolate(text string, params map[string]any) string {
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
