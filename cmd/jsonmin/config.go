package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/tdewolff/jsonmin/json"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".jsonmin.yaml"

// Options are the settings of a run.
type Options struct {
	Output    string
	Type      string
	Match     []string
	Exclude   []string
	Ext       map[string]string
	Recursive bool
	All       bool
	Quiet     bool
	Verbose   int
	Watch     bool
	Bundle    bool
	Gzip      bool
	Preserve  bool
	JSON      json.Minifier
}

// Config holds defaults for the options, loaded from a YAML file.
// Options given on the command line take precedence.
type Config struct {
	Output    string            `yaml:"output"`
	Type      string            `yaml:"type"`
	Match     []string          `yaml:"match"`
	Exclude   []string          `yaml:"exclude"`
	Ext       map[string]string `yaml:"ext"`
	Recursive bool              `yaml:"recursive"`
	All       bool              `yaml:"all"`
	Quiet     bool              `yaml:"quiet"`
	Verbose   int               `yaml:"verbose"`
	Bundle    bool              `yaml:"bundle"`
	Gzip      bool              `yaml:"gzip"`
	Preserve  bool              `yaml:"preserve"`
	JSON      struct {
		ChunkSize    int  `yaml:"chunk-size"`
		EscapeParity bool `yaml:"escape-parity"`
	} `yaml:"json"`
}

// LoadConfig reads a configuration file. It returns nil when the file does not exist and is not required.
func LoadConfig(filename string, required bool) (*Config, error) {
	b, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(b, filename)
}

func parseConfig(b []byte, filename string) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}
	if cfg.JSON.ChunkSize < 0 {
		return nil, fmt.Errorf("parse config %s: json.chunk-size must be positive", filename)
	}
	return cfg, nil
}

// Apply copies the configured values into the options that were not set on the command line.
func (cfg *Config) Apply(isSet func(string) bool, o *Options) {
	setString := func(name string, dst *string, v string) {
		if !isSet(name) && v != "" {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if !isSet(name) && v {
			*dst = true
		}
	}

	setString("output", &o.Output, cfg.Output)
	setString("type", &o.Type, cfg.Type)
	if !isSet("match") {
		o.Match = append(o.Match, cfg.Match...)
	}
	if !isSet("exclude") {
		o.Exclude = append(o.Exclude, cfg.Exclude...)
	}
	if !isSet("ext") && 0 < len(cfg.Ext) {
		o.Ext = cfg.Ext
	}
	setBool("recursive", &o.Recursive, cfg.Recursive)
	setBool("all", &o.All, cfg.All)
	setBool("quiet", &o.Quiet, cfg.Quiet)
	if !isSet("verbose") && 0 < cfg.Verbose {
		o.Verbose = cfg.Verbose
	}
	setBool("bundle", &o.Bundle, cfg.Bundle)
	setBool("gzip", &o.Gzip, cfg.Gzip)
	setBool("preserve", &o.Preserve, cfg.Preserve)
	if !isSet("json-chunk-size") && cfg.JSON.ChunkSize != 0 {
		o.JSON.ChunkSize = cfg.JSON.ChunkSize
	}
	setBool("json-escape-parity", &o.JSON.EscapeParity, cfg.JSON.EscapeParity)
}
