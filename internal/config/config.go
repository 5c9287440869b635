// Package config loads storesync configuration.
//
// Configuration is YAML. Values are checked and defaulted by an embedded
// CUE schema, so a missing file, an empty file and a partial file all
// produce a complete Config.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config is the resolved configuration.
type Config struct {
	Database string   `json:"database" yaml:"database"`
	Log      Log      `json:"log" yaml:"log"`
	Sync     Sync     `json:"sync" yaml:"sync"`
	Dispatch Dispatch `json:"dispatch" yaml:"dispatch"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Sync configures paging against the remote service.
type Sync struct {
	FirstPage    int `json:"first_page" yaml:"first_page"`
	PageSize     int `json:"page_size" yaml:"page_size"`
	FullPageSize int `json:"full_page_size" yaml:"full_page_size"`
}

// Dispatch configures the action dispatcher.
type Dispatch struct {
	Strict bool `json:"strict" yaml:"strict"`
}

// Error reports configuration that does not satisfy the schema.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	return Parse(nil)
}

// Load reads and resolves the YAML file at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse resolves YAML configuration against the schema.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Err: fmt.Errorf("parse yaml: %w", err)}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &Error{Err: fmt.Errorf("compile schema: %w", err)}
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &Error{Err: errors.New(describe(err))}
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, &Error{Err: fmt.Errorf("decode: %w", err)}
	}
	return &cfg, nil
}

// describe flattens CUE errors into one line per problem.
func describe(err error) string {
	var lines []string
	for _, e := range cueerrors.Errors(err) {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "; ")
}

// Level returns the slog level named by Log.Level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger returns a logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
