// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pdiddy/explainer/internal/export"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/session"
	"github.com/pdiddy/explainer/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type tabRequest struct {
	Tab session.Tab `json:"tab"`
}

type addBlockRequest struct {
	types.ChainRef
	// Template names a catalog template. Ignored when Custom is set.
	Template string          `json:"template"`
	Custom   *types.Template `json:"custom,omitempty"`
}

type highlightRequest struct {
	Text string `json:"text"`
}

type reorderRequest struct {
	types.ChainRef
	From int `json:"from"`
	To   int `json:"to"`
}

type blendRequest struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Confirmed bool   `json:"confirmed"`
}

// Explain is the pass-through to the generation collaborator.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req generate.ExplainRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	out, err := h.gen.Generate(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("explain: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generate.ExplainResponse{Output: out})
}

// Templates lists the block palette.
func (h *Handler) Templates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Templates())
}

// State returns the whole session.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// SetPrompt replaces the prompt text.
func (h *Handler) SetPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decode(w, r, &req) {
		return
	}
	h.sess.SetPrompt(req.Prompt)
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// SetTab switches the editor view.
func (h *Handler) SetTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.sess.SetTab(req.Tab) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tab %q", req.Tab))
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// SetActive moves the active-chain pointer. An empty parent returns to
// the main chain.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var ref types.ChainRef
	if !decode(w, r, &ref) {
		return
	}
	if !h.sess.SetActive(ref) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no branch under %q", ref.Parent))
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// AddBlock appends a template or custom block to a chain. The parent must
// be an existing block or branch.
func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		b   types.Block
		err error
	)
	if req.Custom != nil {
		b, err = h.sess.AddCustom(req.ChainRef, req.Custom.Type, req.Custom.Icon, req.Custom.Description)
	} else {
		b, err = h.sess.Add(req.ChainRef, req.Template)
	}
	switch {
	case errors.Is(err, session.ErrUnknownParent):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusCreated, b)
	}
}

// FindBlock returns one block from any chain.
func (h *Handler) FindBlock(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sess.Find(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// RemoveBlock deletes a block and its branches. Unknown ids succeed.
func (h *Handler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	h.sess.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// GrowBranch spawns a branch block. An unknown parent is a no-op.
func (h *Handler) GrowBranch(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sess.Grow(r.PathValue("id"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Highlight turns selected text into a block on the active chain.
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if !decode(w, r, &req) {
		return
	}
	b, ok := h.sess.Extract(req.Text)
	if !ok {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Reorder moves a block within its chain.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	h.sess.Reorder(req.ChainRef, req.From, req.To)
	w.WriteHeader(http.StatusNoContent)
}

// Generate produces an explanation for the active chain. A failed
// generation still answers 200 with failed set and a placeholder output.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Generate(r.Context())
	switch {
	case errors.Is(err, session.ErrEmptyPrompt), errors.Is(err, session.ErrEmptyChain):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if out.Failed {
		log.Printf("generate: %s", out.Reason)
	}
	writeJSON(w, http.StatusOK, out)
}

// Blend merges two confirmed blocks of the active chain.
func (h *Handler) Blend(w http.ResponseWriter, r *http.Request) {
	var req blendRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Confirmed {
		writeError(w, http.StatusBadRequest, "blend must be confirmed")
		return
	}
	b, err := h.sess.Blend(r.Context(), req.A, req.B)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, b)
	case errors.Is(err, session.ErrGeneration):
		log.Printf("blend: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrBlendSourceGone):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// Tree returns the tree projection.
func (h *Handler) Tree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Tree())
}

// History lists completed generations, filtered by the q parameter.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sess.SearchHistory(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Export downloads the session in the format named by the format
// parameter (default json).
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := types.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = types.ExportJSON
	}
	mime, ext, err := export.ContentType(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, h.sess.Document()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "explanation"+ext))
	w.Write(buf.Bytes())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
