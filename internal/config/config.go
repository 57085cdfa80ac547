// Package config holds the settings shared by the hlbsp tools.
//
// QPov
//
// Copyright (C) Thomas Habets <thomas@habets.se> 2015
// https://github.com/ThomasHabets/qpov
//
//   This program is free software; you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation; either version 2 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License along
//   with this program; if not, write to the Free Software Foundation, Inc.,
//   51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
//
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	// WADs are searched for textures in this order. The first one that has a texture wins.
	WADs []string `yaml:"wads,omitempty"`

	// PAKs are opened for pak: paths. Later ones override earlier ones.
	Paks []string `yaml:"paks,omitempty"`

	// SkyboxDir holds <sky><side>.tga files.
	SkyboxDir string `yaml:"skybox_dir,omitempty"`

	Cloud   CloudConfig   `yaml:"cloud,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
	Serve   ServeConfig   `yaml:"serve"`
	Export  ExportConfig  `yaml:"export"`
}

// CloudConfig is for gs:// paths.
type CloudConfig struct {
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr string `yaml:"addr"`
	Maps string `yaml:"maps"` // Directory, pak: prefix, or gs://bucket/prefix that map names are looked up in.
}

// ExportConfig holds image export settings.
type ExportConfig struct {
	Scale  float64 `yaml:"scale"`
	Format string  `yaml:"format"`
}

// Default returns the built in settings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Addr: "localhost:8080",
			Maps: "maps",
		},
		Export: ExportConfig{
			Scale:  1,
			Format: "png",
		},
	}
}

// Validate checks values that can't be checked by parsing alone.
func (c *Config) Validate() error {
	switch c.Export.Format {
	case "png", "webp":
	default:
		return fmt.Errorf("export format %q must be png or webp", c.Export.Format)
	}
	if c.Export.Scale <= 0 {
		return fmt.Errorf("export scale %v must be positive", c.Export.Scale)
	}
	return nil
}

// Write writes the config as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
