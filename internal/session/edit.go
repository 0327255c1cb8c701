// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/explainer/internal/chain"
	"github.com/pdiddy/explainer/pkg/types"
)

// SetPrompt replaces the prompt text.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
}

// SetTab switches the active editor view. Unknown tabs are ignored.
func (s *Session) SetTab(tab Tab) bool {
	switch tab {
	case TabBuild, TabTree, TabHistory, TabExport:
	default:
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	return true
}

// Templates returns the palette offered for new blocks.
func (s *Session) Templates() []types.Template {
	out := make([]types.Template, len(s.catalog.Templates))
	copy(out, s.catalog.Templates)
	return out
}

// Add appends a block built from the catalog template typ to target.
func (s *Session) Add(target types.ChainRef, typ string) (types.Block, error) {
	tmpl, ok := s.catalog.Lookup(typ)
	if !ok {
		return types.Block{}, fmt.Errorf("%w %q", ErrUnknownTemplate, typ)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Targetable(target) {
		return types.Block{}, fmt.Errorf("%w %q", ErrUnknownParent, target.Parent)
	}
	return s.store.Add(target, tmpl), nil
}

// AddCustom appends a block with caller-supplied fields to target. An
// empty type falls back to "Custom".
func (s *Session) AddCustom(target types.ChainRef, typ, icon, description string) (types.Block, error) {
	if strings.TrimSpace(typ) == "" {
		typ = "Custom"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Targetable(target) {
		return types.Block{}, fmt.Errorf("%w %q", ErrUnknownParent, target.Parent)
	}
	return s.store.AddCustom(target, typ, icon, description), nil
}

// Extract turns highlighted text into a block on the active chain.
func (s *Session) Extract(text string) (types.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Extract(s.store.Active(), text)
}

// Remove deletes a block and its branches. Unknown ids are ignored.
func (s *Session) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Remove(id)
}

// Reorder moves a block within one chain.
func (s *Session) Reorder(ref types.ChainRef, from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reorder(ref, from, to)
}

// Grow spawns a branch under parentID and makes it active.
func (s *Session) Grow(parentID string) (types.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Grow(parentID)
}

// SetActive selects the main chain or an existing branch.
func (s *Session) SetActive(ref types.ChainRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetActive(ref)
}

// ReturnToMain points the active chain back at the main chain.
func (s *Session) ReturnToMain() {
	s.SetActive(types.MainChain)
}

// Find looks up a block in any chain.
func (s *Session) Find(id string) (types.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Find(id)
}

// Tree returns the tree projection of all chains.
func (s *Session) Tree() *chain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Tree()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.store.Active()
	return State{
		Prompt:   s.prompt,
		Tab:      s.tab,
		Active:   active,
		Main:     s.store.Main(),
		Branches: s.store.Branches(),
		Output:   s.output,
		Busy:     s.busy[active],
	}
}

// Document returns the exportable view: prompt, main chain and the last
// explanation.
func (s *Session) Document() types.ExportDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.ExportDocument{
		Prompt:      s.prompt,
		Structure:   s.store.Main(),
		Explanation: s.output,
	}
}

// History returns every completed generation, oldest first.
func (s *Session) History(ctx context.Context) ([]types.HistoryEntry, error) {
	return s.history.List(ctx)
}

// SearchHistory returns completed generations whose prompt or output contains q.
func (s *Session) SearchHistory(ctx context.Context, q string) ([]types.HistoryEntry, error) {
	return s.history.Search(ctx, q)
}
