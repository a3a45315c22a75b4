// Package config handles asmlens.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"loov.dev/asmlens/internal/compile"
)

// FileName is the name of the configuration file.
const FileName = "asmlens.toml"

// Config is the deployment configuration.
type Config struct {
	// Endpoint receives compile requests.
	Endpoint string `toml:"endpoint"`
	// CompilersURL optionally serves the compiler catalog.
	CompilersURL string        `toml:"compilers-url"`
	Timeout      time.Duration `toml:"timeout"`

	Language string        `toml:"language"`
	Slots    int           `toml:"slots"`
	Debounce time.Duration `toml:"debounce"`

	SupportsBinary  bool               `toml:"supports-binary"`
	DefaultCompiler string             `toml:"default-compiler"`
	Compilers       []compile.Compiler `toml:"compilers"`
	Filters         compile.Filters    `toml:"filters"`

	// Templates maps a language to the source shown on first start.
	Templates map[string]string `toml:"templates"`

	Storage Storage `toml:"storage"`

	// Path is the file the configuration was loaded from.
	Path string `toml:"-"`
}

// Storage configures persistence.
type Storage struct {
	// Path of the settings database, empty uses DefaultStoragePath.
	Path string `toml:"path"`
	// Prefix namespaces the persisted settings.
	Prefix string `toml:"prefix"`
	// Memory disables persistence.
	Memory bool `toml:"memory"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Endpoint:       "http://localhost:10240/compile",
		Timeout:        compile.DefaultTimeout,
		Language:       "c++",
		Slots:          2,
		Debounce:       750 * time.Millisecond,
		SupportsBinary: true,
		Filters: compile.Filters{
			Intel:        true,
			ColouriseAsm: true,
			Labels:       true,
			Directives:   true,
			CommentOnly:  true,
		},
		Storage: Storage{Prefix: "asmlens"},
	}
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "asmlens", FileName), nil
}

// Load parses the configuration at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path

	c.fill()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadDefault loads the per-user configuration when it exists.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		c := Default()
		return &c, nil
	}
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		d := Default()
		return &d, nil
	}
	return c, err
}

func (c *Config) fill() {
	d := Default()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.Slots <= 0 {
		c.Slots = d.Slots
	}
	if c.Language == "" {
		c.Language = d.Language
	}
}

// Validate checks for inconsistent settings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	seen := map[string]bool{}
	for i, compiler := range c.Compilers {
		if compiler.ID == "" {
			return fmt.Errorf("compilers[%d]: missing id", i)
		}
		if seen[compiler.ID] {
			return fmt.Errorf("compilers[%d]: duplicate id %q", i, compiler.ID)
		}
		seen[compiler.ID] = true
	}
	if c.DefaultCompiler != "" && len(c.Compilers) > 0 && !seen[c.DefaultCompiler] {
		return fmt.Errorf("default-compiler %q is not listed", c.DefaultCompiler)
	}
	return nil
}

// Template returns the initial source for the configured language.
func (c *Config) Template() string {
	if t, ok := c.Templates[c.Language]; ok {
		return t
	}
	return templates[c.Language]
}

var templates = map[string]string{
	"c++":  "// Type your code here, or load an example.\nint square(int num) {\n    return num * num;\n}\n",
	"c":    "// Type your code here, or load an example.\nint square(int num) {\n    return num * num;\n}\n",
	"rust": "// Type your code here, or load an example.\npub fn square(num: i32) -> i32 {\n    num * num\n}\n",
	"go":   "// Type your code here, or load an example.\npackage p\n\nfunc Square(num int) int {\n\treturn num * num\n}\n",
}
