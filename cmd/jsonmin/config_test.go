package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/test"
)

const configYAML = `
output: out/
recursive: true
match: ["*.json"]
exclude:
  - node_modules/**
ext:
  jsonc: json
json:
  chunk-size: 4096
  escape-parity: true
`

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(configYAML), "test.yaml")
	test.Error(t, err)
	test.String(t, cfg.Output, "out/")
	test.That(t, cfg.Recursive)
	test.T(t, cfg.Match, []string{"*.json"})
	test.T(t, cfg.Exclude, []string{"node_modules/**"})
	test.String(t, cfg.Ext["jsonc"], "json")
	test.T(t, cfg.JSON.ChunkSize, 4096)
	test.That(t, cfg.JSON.EscapeParity)

	cfg, err = parseConfig(nil, "empty.yaml")
	test.Error(t, err)
	test.That(t, cfg != nil, "empty file is an empty config")

	_, err = parseConfig([]byte("unknown: 1\n"), "bad.yaml")
	test.That(t, err != nil, "must return error for unknown fields")

	_, err = parseConfig([]byte("json:\n  chunk-size: -1\n"), "bad.yaml")
	test.That(t, err != nil, "must return error for negative chunk size")
}

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), defaultConfigFile)

	cfg, err := LoadConfig(filename, false)
	test.Error(t, err)
	test.That(t, cfg == nil, "missing optional config")

	_, err = LoadConfig(filename, true)
	test.That(t, err != nil, "must return error for missing required config")

	test.Error(t, os.WriteFile(filename, []byte(configYAML), 0644))
	cfg, err = LoadConfig(filename, true)
	test.Error(t, err)
	test.That(t, cfg.Recursive)
}

func TestConfigApply(t *testing.T) {
	cfg, err := parseConfig([]byte(configYAML), "test.yaml")
	test.Error(t, err)

	o := Options{Match: []string{"a.json"}}
	o.JSON.ChunkSize = 512
	isSet := func(name string) bool {
		return name == "json-chunk-size" || name == "match"
	}
	cfg.Apply(isSet, &o)

	test.String(t, o.Output, "out/")
	test.That(t, o.Recursive)
	test.T(t, o.Match, []string{"a.json"}, "command line takes precedence")
	test.T(t, o.Exclude, []string{"node_modules/**"})
	test.String(t, o.Ext["jsonc"], "json")
	test.T(t, o.JSON.ChunkSize, 512, "command line takes precedence")
	test.That(t, o.JSON.EscapeParity)
	test.That(t, !o.Gzip)
}
