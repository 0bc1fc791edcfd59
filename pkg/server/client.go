package server

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
)

// ClientPath is where the navigation client is served.
const ClientPath = "/_outlet/client.js"

//go:embed client.js
var clientJS []byte

var clientETag = func() string {
	sum := sha256.Sum256(clientJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:16]))
}()

func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// No versioned URL: revalidate through the ETag.
	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")

	if etagMatches(r.Header.Get("If-None-Match"), clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(clientJS)
}

func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
