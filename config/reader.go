package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Read reads a rig config from a .json, .yaml or .yml file and validates it.
func Read(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}
	cfg, err := Unmarshal(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load %q", path)
	}
	cfg.ConfigFilePath = path
	return cfg, nil
}

// FromReader reads a config in the format named by ext from r and validates it.
func FromReader(r io.Reader, ext string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, ext)
}

// Unmarshal decodes a config in the format named by ext, with or without its leading dot, and
// validates it. Unknown fields are rejected.
func Unmarshal(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal json config")
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal yaml config")
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
