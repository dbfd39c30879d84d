package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/migadu/sievefilter/consts"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Output string `toml:"output"` // Log output: "stderr", "stdout", "syslog", or file path
	Format string `toml:"format"` // Log format: "json" or "console"
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", "error"
}

// SieveConfig controls how scripts are parsed and which extensions a
// delivery engine accepts.
type SieveConfig struct {
	// SupportedExtensions are the capabilities scripts may require. Empty
	// means every extension known to go-sieve.
	SupportedExtensions []string `toml:"supported_extensions"`
	// MaxNestingDepth bounds not/allof/anyof nesting while converting scripts.
	MaxNestingDepth int `toml:"max_nesting_depth"`
	// MaxScriptSize is the largest script accepted, in bytes.
	MaxScriptSize int `toml:"max_script_size"`
	// CheckExecutable additionally loads scripts with the go-sieve
	// interpreter under SupportedExtensions.
	CheckExecutable bool `toml:"check_executable"`
}

// CacheConfig configures the parsed script cache.
type CacheConfig struct {
	MaxEntries int    `toml:"max_entries"`
	TTL        string `toml:"ttl"`
}

// GetTTL parses the cache TTL duration
func (c *CacheConfig) GetTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 10 * time.Minute, nil
	}
	return time.ParseDuration(c.TTL)
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
	// Textfile is written in the node_exporter textfile format after a run.
	Textfile string `toml:"textfile"`
}

// Config holds the full tool configuration
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Sieve   SieveConfig   `toml:"sieve"`
	Cache   CacheConfig   `toml:"cache"`
	Metrics MetricsConfig `toml:"metrics"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Output: "stderr",
			Format: "console",
			Level:  "info",
		},
		Sieve: SieveConfig{
			SupportedExtensions: []string{"fileinto", "vacation", "envelope", "imap4flags", "variables", "relational", "copy", "regex"},
			MaxNestingDepth:     16,
			MaxScriptSize:       64 * 1024,
			CheckExecutable:     true,
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
			TTL:        "10m",
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Sieve.MaxNestingDepth <= 0 {
		return fmt.Errorf("%w: sieve.max_nesting_depth must be positive, got %d", consts.ErrInvalidConfiguration, c.Sieve.MaxNestingDepth)
	}
	if c.Sieve.MaxScriptSize <= 0 {
		return fmt.Errorf("%w: sieve.max_script_size must be positive, got %d", consts.ErrInvalidConfiguration, c.Sieve.MaxScriptSize)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("%w: cache.max_entries must not be negative", consts.ErrInvalidConfiguration)
	}
	if _, err := c.Cache.GetTTL(); err != nil {
		return fmt.Errorf("%w: cache.ttl: %v", consts.ErrInvalidConfiguration, err)
	}
	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("%w: metrics.textfile is required when metrics are enabled", consts.ErrInvalidConfiguration)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: logging.format must be json or console, got %q", consts.ErrInvalidConfiguration, c.Logging.Format)
	}
	return nil
}

// LoadConfigFromFile loads configuration from a TOML file and trims whitespace from all string fields.
// Duplicate keys keep their first occurrence and unknown keys are reported, both as warnings.
func LoadConfigFromFile(configPath string, cfg *Config) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	metadata, err := toml.Decode(string(content), cfg)
	if err != nil {
		if !strings.Contains(err.Error(), "has already been defined") {
			return enhanceConfigError(err)
		}
		log.Printf("WARNING: Configuration file '%s' contains duplicate keys: %v", configPath, err)
		log.Printf("WARNING: Only the first occurrence of each key will be used.")

		cleaned := removeDuplicateKeysFromTOML(string(content))
		if metadata, err = toml.Decode(cleaned, cfg); err != nil {
			return enhanceConfigError(err)
		}
	}

	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		log.Printf("WARNING: Configuration file '%s' contains unknown keys that will be ignored:", configPath)
		for _, key := range undecoded {
			log.Printf("WARNING:   - %s", key)
		}
	}

	trimStringFields(reflect.ValueOf(cfg).Elem())
	return nil
}

// removeDuplicateKeysFromTOML comments out every repeated key of a table,
// keeping the first occurrence. Each [[array]] element starts a fresh scope.
func removeDuplicateKeysFromTOML(content string) string {
	lines := strings.Split(content, "\n")
	seen := make(map[string]int)
	section := ""

	out := make([]string, 0, len(lines))
	for lineNum, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
		case strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]]"):
			section = strings.TrimSpace(trimmed[2 : len(trimmed)-2])
			for k := range seen {
				if strings.HasPrefix(k, section+".") {
					delete(seen, k)
				}
			}
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			section = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		default:
			key, _, ok := strings.Cut(trimmed, "=")
			if !ok {
				break
			}
			fullKey := strings.TrimSpace(key)
			if section != "" {
				fullKey = section + "." + fullKey
			}
			if prev, dup := seen[fullKey]; dup {
				log.Printf("WARNING: Duplicate key '%s' at line %d (first at line %d) ignored.", fullKey, lineNum+1, prev+1)
				out = append(out, "# DUPLICATE IGNORED: "+line)
				continue
			}
			seen[fullKey] = lineNum
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// enhanceConfigError adds a hint to common TOML mistakes
func enhanceConfigError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expected value but found \"f\""),
		strings.Contains(msg, "expected value but found \"t\""):
		return fmt.Errorf("%w\n\nHINT: boolean values must be exactly 'true' or 'false' (lowercase, unquoted)", err)
	case strings.Contains(msg, "expected") || strings.Contains(msg, "invalid"):
		return fmt.Errorf("%w\n\nHINT: check quoting, balanced brackets and [section] headers in the configuration file", err)
	}
	return err
}

// trimStringFields recursively trims whitespace from all string fields in a struct
func trimStringFields(v reflect.Value) {
	if !v.IsValid() || !v.CanSet() {
		return
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.TrimSpace(v.String()))
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimStringFields(v.Index(i))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			trimStringFields(v.Field(i))
		}
	case reflect.Ptr:
		if !v.IsNil() {
			trimStringFields(v.Elem())
		}
	}
}
