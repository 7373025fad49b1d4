package configx

import (
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var (
	ErrorRegistry = errx.NewRegistry("CONFIGX")

	ErrMissingEnv = ErrorRegistry.Register("MISSING_ENV", errx.TypeSystem, http.StatusInternalServerError, "Required environment variables are not set")
	ErrReadFile   = ErrorRegistry.Register("READ_FILE", errx.TypeSystem, http.StatusInternalServerError, "Failed to read configuration file")
)

// Builder assembles a Config from defaults, an optional file and the environment.
// Later sources override earlier ones.
type Builder struct {
	defaults  map[string]any
	files     []string
	envPrefix []string
	required  []string
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{defaults: make(map[string]any)}
}

// WithDefaults sets default values; nested maps become dotted keys
func (b *Builder) WithDefaults(defaults map[string]any) *Builder {
	flatten("", defaults, b.defaults)
	return b
}

// FromFile reads a config file (yaml, json, toml...) by extension
func (b *Builder) FromFile(path string) *Builder {
	b.files = append(b.files, path)
	return b
}

// FromEnv loads variables starting with prefix. APP_SERVER_PORT becomes server.port.
func (b *Builder) FromEnv(prefix string) *Builder {
	b.envPrefix = append(b.envPrefix, prefix)
	return b
}

// RequireEnv fails Build when any of the named variables is unset
func (b *Builder) RequireEnv(names ...string) *Builder {
	b.required = append(b.required, names...)
	return b
}

// Build resolves all sources
func (b *Builder) Build() (*Config, error) {
	var missing []string
	for _, name := range b.required {
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, ErrorRegistry.New(ErrMissingEnv).WithDetail("variables", missing)
	}

	v := viper.New()
	for k, val := range b.defaults {
		v.SetDefault(k, val)
	}

	for _, path := range b.files {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, ErrorRegistry.NewWithCause(ErrReadFile, err).WithDetail("path", path)
		}
	}

	for _, prefix := range b.envPrefix {
		for _, kv := range os.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(name, prefix) {
				continue
			}
			key := envKey(strings.TrimPrefix(name, prefix))
			if key == "" {
				continue
			}
			v.Set(key, value)
		}
	}

	return &Config{v: v}, nil
}

func envKey(name string) string {
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool { return r == '_' })
	return strings.Join(parts, ".")
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, val := range in {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = val
	}
}

// Config is a resolved, read-only configuration
type Config struct {
	v *viper.Viper
}

// Get returns the value stored at a dotted key
func (c *Config) Get(key string) Value {
	return Value{raw: c.v.Get(key), set: c.v.IsSet(key)}
}

// Has reports whether key has a value from any source
func (c *Config) Has(key string) bool {
	return c.v.IsSet(key)
}

// Keys lists every known key, sorted
func (c *Config) Keys() []string {
	keys := c.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// AllSettings returns the merged configuration as nested maps
func (c *Config) AllSettings() map[string]any {
	return c.v.AllSettings()
}

// Value wraps a raw configuration value with lenient conversions
type Value struct {
	raw any
	set bool
}

func (v Value) IsSet() bool               { return v.set }
func (v Value) Raw() any                  { return v.raw }
func (v Value) AsString() string          { return cast.ToString(v.raw) }
func (v Value) AsInt() int                { return cast.ToInt(v.raw) }
func (v Value) AsInt64() int64            { return cast.ToInt64(v.raw) }
func (v Value) AsFloat() float64          { return cast.ToFloat64(v.raw) }
func (v Value) AsBool() bool              { return cast.ToBool(v.raw) }
func (v Value) AsDuration() time.Duration { return cast.ToDuration(v.raw) }
func (v Value) AsStringSlice() []string   { return cast.ToStringSlice(v.raw) }
func (v Value) AsMap() map[string]any     { return cast.ToStringMap(v.raw) }

// AsStringOr returns def when the value is unset
func (v Value) AsStringOr(def string) string {
	if !v.set {
		return def
	}
	return v.AsString()
}

// AsIntOr returns def when the value is unset
func (v Value) AsIntOr(def int) int {
	if !v.set {
		return def
	}
	return v.AsInt()
}

// AsBoolOr returns def when the value is unset
func (v Value) AsBoolOr(def bool) bool {
	if !v.set {
		return def
	}
	return v.AsBool()
}
