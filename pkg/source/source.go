// Package source reads map and WAD bytes from disk, PAK files, or Google Cloud Storage.
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
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	storage "cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	cloudopt "google.golang.org/api/option"

	"github.com/ThomasHabets/hlbsp/pkg/pak"
)

const (
	gcsPrefix = "gs://"
	pakPrefix = "pak:"
)

// Source reads files named as:
//
//	path/on/disk.bsp
//	pak:maps/c1a0.bsp
//	gs://bucket/maps/c1a0.bsp
type Source struct {
	Paks            pak.MultiPak
	CredentialsFile string

	mu  sync.Mutex
	gcs *storage.Client
}

// New creates a source. paks may be nil. The storage client is only created
// when a gs:// path is first read.
func New(paks pak.MultiPak, credentialsFile string) *Source {
	return &Source{
		Paks:            paks,
		CredentialsFile: credentialsFile,
	}
}

// ParseGCS splits gs://bucket/object.
func ParseGCS(fn string) (string, string, bool) {
	if !strings.HasPrefix(fn, gcsPrefix) {
		return "", "", false
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(fn, gcsPrefix), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// ReadFile returns the whole file.
func (s *Source) ReadFile(ctx context.Context, fn string) ([]byte, error) {
	switch {
	case strings.HasPrefix(fn, gcsPrefix):
		bucket, object, ok := ParseGCS(fn)
		if !ok {
			return nil, fmt.Errorf("bad cloud storage path %q, want gs://bucket/object", fn)
		}
		return s.readGCS(ctx, bucket, object)
	case strings.HasPrefix(fn, pakPrefix):
		b, err := s.Paks.ReadFile(strings.TrimPrefix(fn, pakPrefix))
		if err != nil {
			return nil, fmt.Errorf("reading from PAK: %w", err)
		}
		return b, nil
	}
	return os.ReadFile(fn)
}

// Base returns the file name without directory or extension, for any kind of path.
func Base(fn string) string {
	_, fn = splitPrefix(fn)
	fn = path.Base(strings.ReplaceAll(fn, `\`, "/"))
	return strings.TrimSuffix(fn, path.Ext(fn))
}

// Dir returns all but the last element of fn, keeping any gs:// or pak: prefix.
func Dir(fn string) string {
	prefix, rest := splitPrefix(fn)
	return prefix + path.Dir(rest)
}

// Join joins path elements onto dir, keeping any gs:// or pak: prefix.
func Join(dir string, elem ...string) string {
	prefix, rest := splitPrefix(dir)
	return prefix + path.Join(append([]string{rest}, elem...)...)
}

func splitPrefix(fn string) (string, string) {
	for _, p := range []string{gcsPrefix, pakPrefix} {
		if strings.HasPrefix(fn, p) {
			return p, fn[len(p):]
		}
	}
	return "", fn
}

func (s *Source) client(ctx context.Context) (*storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs != nil {
		return s.gcs, nil
	}
	var opts []cloudopt.ClientOption
	if s.CredentialsFile != "" {
		opts = append(opts, cloudopt.WithCredentialsFile(s.CredentialsFile))
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	s.gcs = c
	return c, nil
}

func (s *Source) readGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("opening gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", bucket, object, err)
	}
	log.WithFields(log.Fields{
		"bucket": bucket,
		"object": object,
		"bytes":  len(b),
	}).Debug("Read from cloud storage")
	return b, nil
}

// Close releases the PAK files and the storage client.
func (s *Source) Close() error {
	s.Paks.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs == nil {
		return nil
	}
	err := s.gcs.Close()
	s.gcs = nil
	return err
}
