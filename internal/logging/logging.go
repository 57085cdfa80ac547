// Package logging sets up logrus for the hlbsp tools.
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
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ThomasHabets/hlbsp/internal/config"
)

// Rotation settings for the log file.
const (
	maxSizeMB  = 50
	maxBackups = 3
	maxAgeDays = 7
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure sets level, format and output of l. Output goes to console,
// and also to a rotated file if cfg.File is set. Close the returned closer on exit.
func Configure(l *log.Logger, cfg config.LoggingConfig, console io.Writer) (io.Closer, error) {
	lvl, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("bad log level: %w", err)
	}
	l.SetLevel(lvl)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	if cfg.File == "" {
		l.SetOutput(console)
		return nopCloser{}, nil
	}
	f := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
		LocalTime:  true,
	}
	l.SetOutput(io.MultiWriter(console, f))
	return f, nil
}

// Init configures the standard logger, writing to stderr.
func Init(cfg config.LoggingConfig) (io.Closer, error) {
	return Configure(log.StandardLogger(), cfg, os.Stderr)
}
