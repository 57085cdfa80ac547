package main

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

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/hlbsp/pkg/atlas"
	"github.com/ThomasHabets/hlbsp/pkg/bsp"
	"github.com/ThomasHabets/hlbsp/pkg/export"
	"github.com/ThomasHabets/hlbsp/pkg/source"
)

const requestDeadline = time.Minute

type server struct {
	e *env

	mu     sync.Mutex
	levels map[string]*level
}

func newServer(e *env) *server {
	return &server{
		e:      e,
		levels: make(map[string]*level),
	}
}

// httpError is an error with a status code to send to the client.
type httpError struct {
	code int
	err  error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func notFound(format string, args ...interface{}) error {
	return &httpError{code: http.StatusNotFound, err: fmt.Errorf(format, args...)}
}

// statusCode picks the status code for an error from a handler.
func statusCode(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.code
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type handlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, l *level) error

// wrap loads the map named in the URL, and logs and reports errors.
// Every request gets an ID, sent back in X-Request-ID and used in the logs.
func (s *server) wrap(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestDeadline)
		defer cancel()

		requestID := uuid.New()
		w.Header().Set("X-Request-ID", requestID.String())
		entry := log.WithFields(log.Fields{
			"request": requestID.String(),
			"remote":  r.RemoteAddr,
			"path":    r.URL.Path,
		})
		st := time.Now()

		err := func() error {
			l, err := s.level(ctx, mux.Vars(r)["name"])
			if err != nil {
				return err
			}
			return f(ctx, w, r, l)
		}()
		if err != nil {
			code := statusCode(err)
			if code == http.StatusInternalServerError {
				entry.Errorf("Failed: %v", err)
				http.Error(w, "Internal error", code)
				return
			}
			entry.Infof("Returning %d: %v", code, err)
			http.Error(w, err.Error(), code)
			return
		}
		entry.WithField("duration", time.Since(st)).Info("Served")
	}
}

// level returns the map with the given name, loading it the first time.
func (s *server) level(ctx context.Context, name string) (*level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, found := s.levels[name]; found {
		return l, nil
	}
	l, err := s.e.loadLevel(ctx, source.Join(s.e.cfg.Serve.Maps, name+".bsp"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound("no map %q", name)
	}
	if err != nil {
		return nil, err
	}
	s.levels[name] = l
	return l, nil
}

func geometry(l *level, modelStr string) (*bsp.Geometry, error) {
	if modelStr == "" {
		modelStr = "0"
	}
	model, err := strconv.Atoi(modelStr)
	if err != nil {
		return nil, notFound("bad model %q", modelStr)
	}
	if model < 0 || model >= len(l.m.Models) {
		return nil, notFound("map %q has no model %d", l.name, model)
	}
	return l.m.ModelGeometry(model)
}

// writeBody sends the whole body, or nothing for HEAD.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, b []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	if r.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(b)
	return err
}

func (s *server) handleInfo(ctx context.Context, w http.ResponseWriter, r *http.Request, l *level) error {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, export.NewInfo(l.name, l.m)); err != nil {
		return err
	}
	return writeBody(w, r, "application/json", buf.Bytes())
}

func (s *server) handleGeometry(ctx context.Context, w http.ResponseWriter, r *http.Request, l *level) error {
	g, err := geometry(l, mux.Vars(r)["model"])
	if err != nil {
		return err
	}
	m := export.NewMesh(g, g.Batches(), export.Options{})
	return writeBody(w, r, "application/x-protobuf", m.Marshal())
}

func (s *server) handleTexture(ctx context.Context, w http.ResponseWriter, r *http.Request, l *level) error {
	name := mux.Vars(r)["texture"]
	tm, err := s.e.textures(ctx, l, []string{name})
	if err != nil {
		return err
	}
	t, found := tm.Get(name)
	if !found {
		return notFound("texture %q not in map %q or its WADs", name, l.name)
	}
	img, _ := t.Image(0)
	var buf bytes.Buffer
	if err := export.EncodeImage(&buf, img, export.FormatPNG); err != nil {
		return err
	}
	return writeBody(w, r, "image/png", buf.Bytes())
}

func (s *server) handleLightmap(ctx context.Context, w http.ResponseWriter, r *http.Request, l *level) error {
	g, err := geometry(l, r.FormValue("model"))
	if err != nil {
		return err
	}
	img, _, err := atlas.Lightmap(g.Faces, bsp.LightmapTexels(l.m.Lighting))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.EncodeImage(&buf, img, export.FormatPNG); err != nil {
		return err
	}
	return writeBody(w, r, "image/png", buf.Bytes())
}

func (s *server) router() *mux.Router {
	const name = "/maps/{name:[A-Za-z0-9_-]+}"
	r := mux.NewRouter()
	r.HandleFunc(name+"/info", s.wrap(s.handleInfo)).Methods("GET", "HEAD")
	r.HandleFunc(name+"/geometry/{model}", s.wrap(s.handleGeometry)).Methods("GET", "HEAD")
	r.HandleFunc(name+"/textures/{texture}.png", s.wrap(s.handleTexture)).Methods("GET", "HEAD")
	r.HandleFunc(name+"/lightmap.png", s.wrap(s.handleLightmap)).Methods("GET", "HEAD")
	return r
}

func serve(ctx context.Context, e *env, args ...string) {
	flags := newFlagSet("serve", "")
	flags.Parse(args)

	srv := &http.Server{
		Addr:         e.cfg.Serve.Addr,
		Handler:      newServer(e).router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestDeadline + 10*time.Second,
	}
	log.Infof("Serving maps from %q on %s", e.cfg.Serve.Maps, e.cfg.Serve.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Serving: %v", err)
	}
}
