package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Request bodies are validated against embedded JSON Schema documents
// before decoding, one document per create endpoint.
//
//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	requestSchemas map[string]*jsonschema.Schema
)

func mustLoadSchemas() {
	schemaOnce.Do(func() {
		requestSchemas = make(map[string]*jsonschema.Schema)
		entries, err := fs.ReadDir(schemaFS, "schemas")
		if err != nil {
			panic(fmt.Sprintf("read embedded schemas: %v", err))
		}
		for _, e := range entries {
			name := strings.TrimSuffix(e.Name(), ".json")
			b, err := fs.ReadFile(schemaFS, path.Join("schemas", e.Name()))
			if err != nil {
				panic(fmt.Sprintf("read schema %s: %v", e.Name(), err))
			}
			rs := &jsonschema.Schema{}
			if err := json.Unmarshal(b, rs); err != nil {
				panic(fmt.Sprintf("compile schema %s: %v", e.Name(), err))
			}
			requestSchemas[name] = rs
		}
	})
}

// validateRequest checks body against the named schema and writes a 400 with
// the key-error list on failure. It reports whether the body passed.
func validateRequest(ctx context.Context, w http.ResponseWriter, name string, body []byte) bool {
	mustLoadSchemas()
	rs, ok := requestSchemas[name]
	if !ok {
		panic(fmt.Sprintf("unknown request schema %q", name))
	}

	keyErrors, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if len(keyErrors) > 0 {
		msgs := make([]string, 0, len(keyErrors))
		for _, ke := range keyErrors {
			msgs = append(msgs, ke.Error())
		}
		writeJSON(w, map[string]any{"error": msgs}, http.StatusBadRequest)
		return false
	}
	return true
}
