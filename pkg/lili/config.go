package lili

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ConfigFileName is the project configuration file looked up by FindConfig.
const ConfigFileName = "lili.toml"

// Cond fallback policies.
const (
	// FallbackTrap ends a cond cascade with a call to the runtime's no-match
	// trap, unless a clause is guarded by T.
	FallbackTrap = "trap"
	// FallbackNone leaves the cascade as-is; falling off the end is undefined.
	FallbackNone = "none"
)

// Config controls code generation. It is usually loaded from lili.toml.
type Config struct {
	// Header is the runtime header included by the generated unit.
	Header string `toml:"header"`

	// MaxRounds caps the inference fixpoint loop.
	MaxRounds int `toml:"max_rounds"`

	// CondFallback is either "trap" or "none".
	CondFallback string `toml:"cond_fallback"`

	// MangleIdentifiers rewrites identifiers that aren't valid C (for
	// example list-length) into snake_case.
	MangleIdentifiers bool `toml:"mangle_identifiers"`

	// Types names the opaque runtime types.
	Types TypeNames `toml:"types"`
}

// TypeNames are the C spellings of the types with no native equivalent.
type TypeNames struct {
	String string `toml:"string"`
	List   string `toml:"list"`
	Any    string `toml:"any"`
}

// DefaultConfig returns the configuration used when no lili.toml is found.
func DefaultConfig() *Config {
	return &Config{
		Header:            "lili/lilib.h",
		MaxRounds:         DefaultMaxRounds,
		CondFallback:      FallbackTrap,
		MangleIdentifiers: true,
		Types: TypeNames{
			String: "LL_String",
			List:   "LL_List",
			Any:    "LL_Any",
		},
	}
}

// Validate rejects settings the compiler can't honor.
func (c *Config) Validate() error {
	switch c.CondFallback {
	case FallbackTrap, FallbackNone:
	default:
		return fmt.Errorf("cond_fallback must be %q or %q, got %q", FallbackTrap, FallbackNone, c.CondFallback)
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive, got %d", c.MaxRounds)
	}
	if c.Header == "" {
		return fmt.Errorf("header must not be empty")
	}
	if c.Types.String == "" || c.Types.List == "" || c.Types.Any == "" {
		return fmt.Errorf("types.string, types.list and types.any must all be set")
	}
	return nil
}

// LoadConfig loads a lili.toml file from the given path. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return config, nil
}

// FindConfig searches for a lili.toml file starting from dir and walking up
// to parent directories. Returns the path to lili.toml and the parsed
// config, or ("", nil, nil) if not found.
func FindConfig(dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
