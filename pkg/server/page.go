package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/outlet-dev/outlet/pkg/manifest"
	"github.com/outlet-dev/outlet/pkg/navigation"
	"github.com/outlet-dev/outlet/pkg/routepath"
	"github.com/outlet-dev/outlet/pkg/view"
)

// servePage renders the route for the request path.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	input := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		input += "?" + r.URL.RawQuery
	}

	// Non-canonical paths redirect to their canonical form so every page
	// has exactly one URL.
	canon, err := routepath.Canonicalize(input)
	if err != nil {
		s.writePage(w, r, http.StatusNotFound, s.notFoundPage(r.URL.Path))
		return
	}
	if canon.Changed {
		target := canon.Path
		if canon.Query != "" {
			target += "?" + canon.Query
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	logger := s.logger.With("request_id", requestID(r.Context()))
	nav := s.navigator(nil, logger)
	defer nav.Close()

	res, err := nav.Navigate(r.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, navigation.ErrForbidden):
		s.writePage(w, r, http.StatusForbidden, s.forbiddenPage(canon.Path))
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client went away.
		return
	default:
		logger.Error("render failed", "path", canon.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	switch {
	case res.Redirect != "":
		http.Redirect(w, r, res.Redirect, http.StatusFound)
	case res.NotFound:
		s.writePage(w, r, http.StatusNotFound, s.notFoundPage(canon.Path))
	default:
		s.writePage(w, r, http.StatusOK, res.Output)
	}
}

func (s *Server) notFoundPage(path string) *view.Node {
	if s.notFound == nil {
		return view.Text("404 page not found")
	}
	return s.notFound(path)
}

func (s *Server) forbiddenPage(path string) *view.Node {
	if s.forbidden == nil {
		return view.Text("403 forbidden")
	}
	return s.forbidden(path)
}

// writePage renders n into a buffer first so a render error can still
// produce a clean 500.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, n *view.Node) {
	var buf bytes.Buffer
	if err := s.renderer.RenderToWriter(&buf, n); err != nil {
		s.logger.Error("html render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

// serveManifest writes the route manifest.
func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request) {
	format := manifest.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := manifest.ParseFormat(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	var buf bytes.Buffer
	if err := manifest.Encode(&buf, manifest.FromRegistry(s.registry), format); err != nil {
		s.logger.Error("manifest encode failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}
