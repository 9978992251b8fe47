package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/mo"
	"go.yaml.in/yaml/v3"
)

// Config is read-only, hierarchical access to the app config. Keys are dot
// separated paths ("catalog.locations"). Absent values are mo.None; values of
// the wrong type are reported as *TypeError.
type Config interface {
	OptionalConfigArray(key string) (mo.Option[[]Config], error)
	OptionalString(key string) (mo.Option[string], error)
}

// TypeError is returned when a config value exists but has an unexpected type.
type TypeError struct {
	Key    string
	Got    string
	Wanted string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Invalid type in config for key '%s', got %s, wanted %s", e.Key, e.Got, e.Wanted)
}

// LookupEnv resolves ${NAME} references in string values.
type LookupEnv func(key string) (string, bool)

type loadOptions struct {
	lookupEnv LookupEnv
}

type LoadOption func(*loadOptions)

// WithLookupEnv overrides the environment used for ${NAME} substitution.
// Defaults to os.LookupEnv.
func WithLookupEnv(fn LookupEnv) LoadOption {
	return func(o *loadOptions) {
		o.lookupEnv = fn
	}
}

func applyLoadOptions(opts []LoadOption) *loadOptions {
	o := &loadOptions{lookupEnv: os.LookupEnv}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.lookupEnv == nil {
		o.lookupEnv = os.LookupEnv
	}
	return o
}

// Tree is a Config over decoded YAML. Keys match case-sensitively, the way
// the catalog reads them, so "Catalog.Locations" is not "catalog.locations".
type Tree struct {
	data      map[string]any
	prefix    string
	lookupEnv LookupEnv
}

var _ Config = (*Tree)(nil)

// Load reads the given YAML files in order. Later files override keys set by
// earlier ones; arrays are replaced, not merged.
func Load(paths []string, opts ...LoadOption) (*Tree, error) {
	if len(paths) == 0 {
		return nil, errors.New("config: no files to load")
	}
	o := applyLoadOptions(opts)

	data := map[string]any{}
	for _, p := range paths {
		doc, err := readFile(p)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", p, err)
		}
		data = mergeMaps(data, doc)
	}
	return &Tree{data: data, lookupEnv: o.lookupEnv}, nil
}

func readFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// mergeMaps merges src into dst. Nested mappings merge key by key; any other
// value in src replaces the one in dst.
func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, sv := range src {
		sm, srcIsMap := asMap(sv)
		dm, dstIsMap := asMap(dst[k])
		if srcIsMap && dstIsMap {
			dst[k] = mergeMaps(dm, sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

// FromMap builds a Tree from an in-memory value, mainly for tests.
func FromMap(data map[string]any, opts ...LoadOption) *Tree {
	o := applyLoadOptions(opts)
	return &Tree{data: data, lookupEnv: o.lookupEnv}
}

// get walks a dot separated key. Anything missing along the way, or a
// non-mapping in the middle of the path, reads as absent.
func (t *Tree) get(key string) any {
	var cur any = t.data
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}
	return cur
}

func (t *Tree) OptionalConfigArray(key string) (mo.Option[[]Config], error) {
	raw := t.get(key)
	if raw == nil {
		return mo.None[[]Config](), nil
	}

	fullKey := t.fullKey(key)
	items, ok := raw.([]any)
	if !ok {
		return mo.None[[]Config](), &TypeError{Key: fullKey, Got: typeName(raw), Wanted: "object-array"}
	}

	out := make([]Config, 0, len(items))
	for i, item := range items {
		itemKey := fmt.Sprintf("%s[%d]", fullKey, i)
		m, ok := asMap(item)
		if !ok {
			return mo.None[[]Config](), &TypeError{Key: itemKey, Got: typeName(item), Wanted: "object"}
		}
		out = append(out, &Tree{data: m, prefix: itemKey, lookupEnv: t.lookupEnv})
	}
	return mo.Some(out), nil
}

func (t *Tree) OptionalString(key string) (mo.Option[string], error) {
	raw := t.get(key)
	if raw == nil {
		return mo.None[string](), nil
	}
	s, ok := raw.(string)
	if !ok {
		return mo.None[string](), &TypeError{Key: t.fullKey(key), Got: typeName(raw), Wanted: "string"}
	}
	return substituteEnv(s, t.lookupEnv), nil
}

func (t *Tree) fullKey(key string) string {
	if t.prefix == "" {
		return key
	}
	return t.prefix + "." + key
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// substituteEnv expands ${NAME} references. If any referenced variable is
// unset the whole value is treated as absent. "$${" yields a literal "${".
func substituteEnv(s string, lookupEnv LookupEnv) mo.Option[string] {
	if !strings.Contains(s, "${") {
		return mo.Some(s)
	}

	var b strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, "${")
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[idx:], "}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += idx

		if idx > 0 && rest[idx-1] == '$' {
			b.WriteString(rest[:idx-1])
			b.WriteString(rest[idx : end+1])
			rest = rest[end+1:]
			continue
		}

		b.WriteString(rest[:idx])
		name := strings.TrimSpace(rest[idx+2 : end])
		val, ok := lookupEnv(name)
		if !ok {
			return mo.None[string]()
		}
		b.WriteString(val)
		rest = rest[end+1:]
	}
	return mo.Some(b.String())
}
