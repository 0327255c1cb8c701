// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/session"
)

// Handler serves the explainer API.
type Handler struct {
	gen  generate.Generator
	sess *session.Session
}

// NewHandler returns a handler that generates with gen and edits sess.
func NewHandler(gen generate.Generator, sess *session.Session) *Handler {
	return &Handler{gen: gen, sess: sess}
}

// NewMux registers every route and wraps the mux in CORS.
func NewMux(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+generate.ExplainPath, h.Explain)
	mux.HandleFunc("GET /api/templates", h.Templates)

	mux.HandleFunc("GET /api/session", h.State)
	mux.HandleFunc("PUT /api/session/prompt", h.SetPrompt)
	mux.HandleFunc("PUT /api/session/tab", h.SetTab)
	mux.HandleFunc("PUT /api/session/active", h.SetActive)
	mux.HandleFunc("POST /api/session/blocks", h.AddBlock)
	mux.HandleFunc("GET /api/session/blocks/{id}", h.FindBlock)
	mux.HandleFunc("DELETE /api/session/blocks/{id}", h.RemoveBlock)
	mux.HandleFunc("POST /api/session/blocks/{id}/grow", h.GrowBranch)
	mux.HandleFunc("POST /api/session/highlight", h.Highlight)
	mux.HandleFunc("POST /api/session/reorder", h.Reorder)
	mux.HandleFunc("POST /api/session/generate", h.Generate)
	mux.HandleFunc("POST /api/session/blend", h.Blend)
	mux.HandleFunc("GET /api/session/tree", h.Tree)
	mux.HandleFunc("GET /api/session/history", h.History)
	mux.HandleFunc("GET /api/session/export", h.Export)

	return CORS(mux)
}
