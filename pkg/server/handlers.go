package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/errors"
	cio "github.com/matzehuels/cratecat/pkg/io"
)

// CatalogResponse is the body of a successful POST /v1/catalog.
type CatalogResponse struct {
	DocumentHash string      `json:"document_hash"`
	CacheHit     bool        `json:"cache_hit"`
	Dependencies []cio.Entry `json:"dependencies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	opts := s.opts.Defaults
	q := r.URL.Query()
	if v := q.Get("kinds"); v != "" {
		kinds, err := deps.ParseDependencyKinds(strings.Split(v, ","))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Kinds = kinds
	}
	if v := q.Get("format"); v != "" {
		opts.InputFormat = v
	}
	for name, dst := range map[string]*bool{
		"include_workspace": &opts.IncludeWorkspace,
		"refresh":           &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v))
			return
		}
		*dst = b
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !stderrors.As(err, &tooLarge) {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
		}
		s.writeError(w, r, err)
		return
	}
	if len(raw) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty request body"))
		return
	}

	result, err := s.runner.Collect(r.Context(), raw, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		DocumentHash: result.DocumentHash,
		CacheHit:     result.CacheHit,
		Dependencies: cio.Entries(result.Catalog),
	})
}
