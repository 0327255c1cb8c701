// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session is the controller for one editing session. It owns the
// block-chain store together with the transient state around it (prompt,
// active tab, busy flags, last output and generation history) and
// orchestrates the two operations that reach the generation collaborator:
// generating an explanation and blending two blocks.
//
// A Session serializes all events with one mutex. The mutex is released
// while a generation is outstanding so other chains stay editable; the
// chain that issued the request is marked busy until it completes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/explainer/internal/chain"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/history"
	"github.com/pdiddy/explainer/internal/templates"
	"github.com/pdiddy/explainer/pkg/types"
)

var (
	// ErrEmptyPrompt rejects a generation without a prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrEmptyChain rejects a generation on a chain without blocks.
	ErrEmptyChain = errors.New("active chain has no blocks")
	// ErrBusy rejects a second request on a chain that is still generating.
	ErrBusy = errors.New("a generation is already running on this chain")
	// ErrUnknownTemplate is returned for a template type not in the catalog.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrUnknownParent rejects adding to the branch of a block that does not exist.
	ErrUnknownParent = errors.New("no block or branch with parent id")
	// ErrNotInActiveChain rejects a blend of blocks outside the active chain.
	ErrNotInActiveChain = errors.New("both blocks must belong to the active chain")
	// ErrSameBlock rejects blending a block with itself.
	ErrSameBlock = errors.New("cannot blend a block with itself")
	// ErrBlendSourceGone is returned when a blend source was removed or the
	// active chain changed while the blend text was being generated.
	ErrBlendSourceGone = errors.New("blend source blocks changed during generation")
	// ErrGeneration wraps every failure of the generation collaborator.
	ErrGeneration = errors.New("generation failed")
)

// FailurePrefix starts the placeholder output shown after a failed generation.
const FailurePrefix = "⚠️ Generation failed: "

// Tab is the editor view currently shown. It is presentation state only.
type Tab string

const (
	TabBuild   Tab = "build"
	TabTree    Tab = "tree"
	TabHistory Tab = "history"
	TabExport  Tab = "export"
)

// Outcome is the result of one explanation request: either generated text
// or a failure reason. Output always holds what the user should see.
type Outcome struct {
	Output string              `json:"output"`
	Failed bool                `json:"failed"`
	Reason string              `json:"reason,omitempty"`
	Entry  *types.HistoryEntry `json:"entry,omitempty"`
}

// State is a point-in-time copy of the session for display.
type State struct {
	Prompt   string                   `json:"prompt"`
	Tab      Tab                      `json:"tab"`
	Active   types.ChainRef           `json:"active"`
	Main     []types.Block            `json:"main"`
	Branches map[string][]types.Block `json:"branches"`
	Output   string                   `json:"output"`
	Busy     bool                     `json:"busy"`
}

// Session holds one in-memory editing session.
type Session struct {
	mu      sync.Mutex
	store   *chain.Store
	gen     generate.Generator
	history *history.Log
	catalog *templates.Catalog
	log     io.Writer

	prompt string
	tab    Tab
	output string
	busy   map[types.ChainRef]bool
}

// Option configures a Session.
type Option func(*Session)

// WithStore replaces the default empty store.
func WithStore(s *chain.Store) Option {
	return func(sess *Session) { sess.store = s }
}

// WithCatalog replaces the built-in template catalog.
func WithCatalog(c *templates.Catalog) Option {
	return func(sess *Session) { sess.catalog = c }
}

// WithLog sets where status lines are written. The default discards them.
func WithLog(w io.Writer) Option {
	return func(sess *Session) { sess.log = w }
}

// New creates a session that generates text with gen.
func New(gen generate.Generator, opts ...Option) (*Session, error) {
	h, err := history.Open()
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	s := &Session{
		store:   chain.New(),
		gen:     gen,
		history: h,
		catalog: templates.Default(),
		log:     io.Discard,
		tab:     TabBuild,
		busy:    make(map[types.ChainRef]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the history database.
func (s *Session) Close() error {
	return s.history.Close()
}

// Generate renders the explanation prompt from the user prompt and the
// active chain, and asks the generator for text. Empty prompts, empty
// chains and busy chains are rejected before anything is sent. A failed
// generation is not an error: the Outcome carries a placeholder output and
// the reason, and nothing else in the session changes.
func (s *Session) Generate(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	prompt := strings.TrimSpace(s.prompt)
	ref := s.store.Active()
	blocks := s.store.Chain(ref)
	switch {
	case prompt == "":
		s.mu.Unlock()
		return Outcome{}, ErrEmptyPrompt
	case len(blocks) == 0:
		s.mu.Unlock()
		return Outcome{}, ErrEmptyChain
	case s.busy[ref]:
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.busy[ref] = true
	s.mu.Unlock()

	fmt.Fprintf(s.log, "generating %s (%d blocks)\n", ref, len(blocks))
	text, err := s.generate(ctx, func() (string, error) {
		return generate.ExplanationPrompt(prompt, blocks)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, ref)

	if err != nil {
		fmt.Fprintf(s.log, "failed  %s: %v\n", ref, err)
		s.output = FailurePrefix + err.Error()
		return Outcome{Output: s.output, Failed: true, Reason: err.Error()}, nil
	}

	s.output = text
	out := Outcome{Output: text}
	entry, err := s.history.Append(context.WithoutCancel(ctx), text, prompt, ref)
	if err != nil {
		fmt.Fprintf(s.log, "warning: history not recorded: %v\n", err)
	} else {
		out.Entry = &entry
	}
	fmt.Fprintf(s.log, "generated %s (%d chars)\n", ref, len(text))
	return out, nil
}

// Blend merges blocks a and b of the active chain into one block whose
// full text is generated from both. The caller confirms with the user
// first. On any failure both source blocks are left untouched; generator
// failures wrap ErrGeneration.
func (s *Session) Blend(ctx context.Context, a, b string) (types.Block, error) {
	s.mu.Lock()
	if a == b {
		s.mu.Unlock()
		return types.Block{}, ErrSameBlock
	}
	ref := s.store.Active()
	blockA, okA := findIn(s.store.Chain(ref), a)
	blockB, okB := findIn(s.store.Chain(ref), b)
	if !okA || !okB {
		s.mu.Unlock()
		return types.Block{}, ErrNotInActiveChain
	}
	if s.busy[ref] {
		s.mu.Unlock()
		return types.Block{}, ErrBusy
	}
	s.busy[ref] = true
	s.mu.Unlock()

	fmt.Fprintf(s.log, "blending %s + %s on %s\n", blockA.Type, blockB.Type, ref)
	text, err := s.generate(ctx, func() (string, error) {
		return generate.BlendPrompt(blockA, blockB)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, ref)

	if err != nil {
		fmt.Fprintf(s.log, "failed  blend: %v\n", err)
		return types.Block{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if s.store.Active() != ref {
		return types.Block{}, ErrBlendSourceGone
	}
	blended, ok := s.store.Blend(a, b, text)
	if !ok {
		return types.Block{}, ErrBlendSourceGone
	}
	fmt.Fprintf(s.log, "blended %s\n", blended.Type)
	return blended, nil
}

// generate renders a prompt and calls the generator without holding the lock.
func (s *Session) generate(ctx context.Context, render func() (string, error)) (string, error) {
	prompt, err := render()
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return s.gen.Generate(ctx, prompt)
}

func findIn(blocks []types.Block, id string) (types.Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return types.Block{}, false
}
