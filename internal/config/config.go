package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config describes a single CLI render: where templates live, the data they
// receive and the request state the getter shortcuts read from.
type Config struct {
	Templates        Templates         `json:"templates" yaml:"templates"`
	Layout           string            `json:"layout" yaml:"layout"`
	Globals          map[string]any    `json:"globals" yaml:"globals"`
	Params           map[string]any    `json:"params" yaml:"params"`
	Session          map[string]any    `json:"session" yaml:"session"`
	Route            map[string]string `json:"route" yaml:"route"`
	Request          Request           `json:"request" yaml:"request"`
	Prompts          []Prompt          `json:"prompts" yaml:"prompts"`
	SanitizePartials bool              `json:"sanitizePartials" yaml:"sanitizePartials"`
	Theme            *Theme            `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// Theme declares a single theme manifest and the variant to render with.
// Templates maps logical template names to themed paths.
type Theme struct {
	Name      string                  `json:"name" yaml:"name"`
	Variant   string                  `json:"variant" yaml:"variant"`
	Tokens    map[string]string       `json:"tokens" yaml:"tokens"`
	Templates map[string]string       `json:"templates" yaml:"templates"`
	Assets    ThemeAssets             `json:"assets" yaml:"assets"`
	Variants  map[string]ThemeVariant `json:"variants" yaml:"variants"`
}

// ThemeAssets lists asset files served under Prefix.
type ThemeAssets struct {
	Prefix string            `json:"prefix" yaml:"prefix"`
	Files  map[string]string `json:"files" yaml:"files"`
}

// ThemeVariant overrides tokens, templates and assets of its theme.
type ThemeVariant struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
	Assets    ThemeAssets       `json:"assets" yaml:"assets"`
}

// Templates locates the template tree.
type Templates struct {
	Dir       string `json:"dir" yaml:"dir"`
	Extension string `json:"extension" yaml:"extension"`
}

// Request is the synthetic HTTP request exposed through the request service.
type Request struct {
	Method string            `json:"method" yaml:"method"`
	URL    string            `json:"url" yaml:"url"`
	Form   map[string]string `json:"form" yaml:"form"`
	Header map[string]string `json:"header" yaml:"header"`
}

// Prompt asks for a param value in interactive mode.
type Prompt struct {
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
	Default string `json:"default" yaml:"default"`
	Help    string `json:"help" yaml:"help"`
}

// Load reads and parses the config file at path. A relative templates.dir is
// resolved against the directory holding the config file.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("config: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return Config{}, err
	}
	if !filepath.IsAbs(cfg.Templates.Dir) {
		cfg.Templates.Dir = filepath.Join(filepath.Dir(path), cfg.Templates.Dir)
	}
	return cfg, nil
}

// Parse decodes JSON (comments and trailing commas allowed) or YAML config
// data and applies defaults.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate reports missing or inconsistent settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Templates.Dir) == "" {
		return errors.New("templates.dir is required")
	}
	if c.Theme != nil {
		if strings.TrimSpace(c.Theme.Name) == "" {
			return errors.New("theme.name is required")
		}
		if variant := c.Theme.Variant; variant != "" {
			if _, ok := c.Theme.Variants[variant]; !ok {
				return fmt.Errorf("theme.variant %q is not declared in theme.variants", variant)
			}
		}
	}
	for i, prompt := range c.Prompts {
		if strings.TrimSpace(prompt.Name) == "" {
			return fmt.Errorf("prompts[%d].name is required", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Templates.Extension == "" {
		c.Templates.Extension = ".tpl"
	}
	if c.Request.Method == "" {
		c.Request.Method = http.MethodGet
	}
	c.Request.Method = strings.ToUpper(c.Request.Method)
	if c.Request.URL == "" {
		c.Request.URL = "/"
	}
	for i := range c.Prompts {
		if c.Prompts[i].Message == "" {
			c.Prompts[i].Message = c.Prompts[i].Name
		}
	}
}
