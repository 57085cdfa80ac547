package config

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

import (
	"flag"
	"strings"
)

// Flags are the command line overrides. Empty or zero means "don't override".
type Flags struct {
	Config           *string
	WADs             *string
	Paks             *string
	SkyboxDir        *string
	CloudCredentials *string
	LogLevel         *string
	LogFile          *string
	Debug            *bool
	Addr             *string
	Maps             *string
	Scale            *float64
	Format           *string
}

// RegisterFlags adds the common flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:           fs.String("config", "", "Config file. Default is ./"+fileName+" or the user config dir."),
		WADs:             fs.String("wads", "", "Comma separated WAD files, searched in order."),
		Paks:             fs.String("paks", "", "Comma separated PAK files. Later ones override earlier ones."),
		SkyboxDir:        fs.String("skybox_dir", "", "Directory with sky TGA files."),
		CloudCredentials: fs.String("cloud_credentials", "", "Path to JSON file containing credentials."),
		LogLevel:         fs.String("log_level", "", "Log level: debug, info, warn or error."),
		LogFile:          fs.String("log_file", "", "Also log to this file, rotated."),
		Debug:            fs.Bool("debug", false, "Shorthand for -log_level=debug."),
		Addr:             fs.String("addr", "", "Address to serve HTTP on."),
		Maps:             fs.String("maps", "", "Where the server finds maps."),
		Scale:            fs.Float64("scale", 0, "Scale exported images by this factor."),
		Format:           fs.String("format", "", "Image format: png or webp."),
	}
}

// Load reads the config file named by -config, then applies the other flags.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(*f.Config)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides cfg with the flags that are set.
func (f *Flags) Apply(cfg *Config) {
	if *f.WADs != "" {
		cfg.WADs = splitList(*f.WADs)
	}
	if *f.Paks != "" {
		cfg.Paks = splitList(*f.Paks)
	}
	if *f.SkyboxDir != "" {
		cfg.SkyboxDir = *f.SkyboxDir
	}
	if *f.CloudCredentials != "" {
		cfg.Cloud.CredentialsFile = *f.CloudCredentials
	}
	if *f.LogLevel != "" {
		cfg.Logging.Level = *f.LogLevel
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.File = *f.LogFile
	}
	if *f.Addr != "" {
		cfg.Serve.Addr = *f.Addr
	}
	if *f.Maps != "" {
		cfg.Serve.Maps = *f.Maps
	}
	if *f.Scale > 0 {
		cfg.Export.Scale = *f.Scale
	}
	if *f.Format != "" {
		cfg.Export.Format = *f.Format
	}
}

func splitList(s string) []string {
	var ret []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ret = append(ret, p)
		}
	}
	return ret
}
