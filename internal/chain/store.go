// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chain holds the block-chain store: one main chain of explanation
// blocks plus branches keyed by the id of the block they grow from.
// Branches may themselves contain blocks that are grown, so the store is
// logically a tree rooted at a virtual node whose children are the main
// chain's blocks.
//
// The store is not safe for concurrent use. Callers serialize access.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/explainer/pkg/types"
)

const (
	// BlendSeparator joins the source types of a blend result.
	BlendSeparator = "+"

	// BlendDescription is the placeholder description of a blend result.
	BlendDescription = "blended — expand to view"

	// HighlightType labels blocks extracted from selected text.
	HighlightType = "Highlight"

	highlightIcon = "🖍️"
	blendIcon     = "🔀"
)

// Store owns the main chain, the branch table and the active-chain pointer.
type Store struct {
	main     []types.Block
	branches map[string][]types.Block
	active   types.ChainRef
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the block id generator. Tests use it for stable ids.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New returns an empty store whose active chain is the main chain.
func New(opts ...Option) *Store {
	s := &Store{
		branches: make(map[string][]types.Block),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add copies tmpl into a new block with a fresh id and appends it to the
// chain referenced by target. A missing branch is created first.
func (s *Store) Add(target types.ChainRef, tmpl types.Template) types.Block {
	b := types.Block{
		ID:          s.newID(),
		Type:        tmpl.Type,
		Icon:        tmpl.Icon,
		Description: tmpl.Description,
	}
	s.appendTo(target, b)
	return b
}

// AddCustom appends a user-defined block to target.
func (s *Store) AddCustom(target types.ChainRef, typ, icon, description string) types.Block {
	return s.Add(target, types.Template{Type: typ, Icon: icon, Description: description})
}

// Extract turns a text selection into a Highlight block appended to target.
// Blank selections are ignored.
func (s *Store) Extract(target types.ChainRef, text string) (types.Block, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Block{}, false
	}
	return s.Add(target, types.Template{Type: HighlightType, Icon: highlightIcon, Description: text}), true
}

// Find looks a block up across the main chain and every branch.
func (s *Store) Find(id string) (types.Block, bool) {
	ref, i := s.locate(id)
	if i < 0 {
		return types.Block{}, false
	}
	return s.chainOf(ref)[i], true
}

// Remove deletes the block with id and every branch rooted at it,
// recursively. The active pointer falls back to the main chain when the
// branch it referenced no longer exists. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	ref, i := s.locate(id)
	if i < 0 {
		return
	}
	c := s.chainOf(ref)
	s.setChain(ref, append(c[:i:i], c[i+1:]...))
	s.prune(id)
}

// prune deletes the branches rooted at each of ids, recursively, and
// resets the active pointer when its branch is gone.
func (s *Store) prune(ids ...string) {
	for _, id := range ids {
		for _, key := range s.cascade(id) {
			delete(s.branches, key)
		}
	}
	if !s.active.IsMain() {
		if _, ok := s.branches[s.active.Parent]; !ok {
			s.active = types.MainChain
		}
	}
}

// cascade returns the keys of the branch rooted at id and of every branch
// nested below it.
func (s *Store) cascade(id string) []string {
	var keys []string
	seen := make(map[string]bool)
	queue := []string{id}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if seen[key] {
			continue
		}
		seen[key] = true
		children, ok := s.branches[key]
		if !ok {
			continue
		}
		keys = append(keys, key)
		for _, child := range children {
			queue = append(queue, child.ID)
		}
	}
	return keys
}

// Reorder moves the block at index from to index to within one chain.
// Out-of-range indexes and unknown chains are ignored.
func (s *Store) Reorder(ref types.ChainRef, from, to int) {
	if !s.exists(ref) {
		return
	}
	c := s.chainOf(ref)
	if from < 0 || from >= len(c) || to < 0 || to >= len(c) || from == to {
		return
	}
	out := make([]types.Block, 0, len(c))
	out = append(out, c[:from]...)
	out = append(out, c[from+1:]...)
	moved := c[from]
	out = append(out[:to], append([]types.Block{moved}, out[to:]...)...)
	s.setChain(ref, out)
}

// Grow spawns a branch block under parentID and makes that branch the
// active chain. It reports false, leaving the store untouched, when the
// parent does not exist.
func (s *Store) Grow(parentID string) (types.Block, bool) {
	parent, ok := s.Find(parentID)
	if !ok {
		return types.Block{}, false
	}
	ref := types.BranchOf(parentID)
	b := s.Add(ref, types.Template{
		Type:        fmt.Sprintf("BranchOf(%s)", parent.Type),
		Icon:        parent.Icon,
		Description: "Alternative to: " + parent.Description,
	})
	s.active = ref
	return b, true
}

// Blend replaces blocks a and b of the active chain with one block that
// carries text. Branches grown from a or b are deleted as on Remove. Both
// blocks must be distinct members of the active chain; otherwise Blend
// reports false and changes nothing.
func (s *Store) Blend(a, b, text string) (types.Block, bool) {
	if a == b {
		return types.Block{}, false
	}
	ref := s.active
	c := s.chainOf(ref)
	ia, ib := indexOf(c, a), indexOf(c, b)
	if ia < 0 || ib < 0 {
		return types.Block{}, false
	}
	blended := types.Block{
		ID:          s.newID(),
		Type:        c[ia].Type + BlendSeparator + c[ib].Type,
		Icon:        blendIcon,
		Description: BlendDescription,
		FullText:    text,
	}
	out := make([]types.Block, 0, len(c)-1)
	for i, blk := range c {
		if i == ia || i == ib {
			continue
		}
		out = append(out, blk)
	}
	s.setChain(ref, append(out, blended))
	s.prune(a, b)
	return blended, true
}

// Active returns the active-chain pointer.
func (s *Store) Active() types.ChainRef {
	return s.active
}

// SetActive moves the active pointer. The main chain is always accepted;
// a branch is accepted only if it exists. It reports whether the pointer
// changed to ref.
func (s *Store) SetActive(ref types.ChainRef) bool {
	if !s.exists(ref) {
		return false
	}
	s.active = ref
	return true
}

// Targetable reports whether blocks may be added to ref: the main chain,
// an existing branch, or the branch of an existing block.
func (s *Store) Targetable(ref types.ChainRef) bool {
	if s.exists(ref) {
		return true
	}
	_, ok := s.Find(ref.Parent)
	return ok
}

// Chain returns a copy of the chain referenced by ref, or nil when it does
// not exist.
func (s *Store) Chain(ref types.ChainRef) []types.Block {
	if !s.exists(ref) {
		return nil
	}
	return clone(s.chainOf(ref))
}

// Main returns a copy of the main chain.
func (s *Store) Main() []types.Block {
	return clone(s.main)
}

// Branches returns a copy of the branch table.
func (s *Store) Branches() map[string][]types.Block {
	out := make(map[string][]types.Block, len(s.branches))
	for k, v := range s.branches {
		out[k] = clone(v)
	}
	return out
}

// Len returns the number of blocks across all chains.
func (s *Store) Len() int {
	n := len(s.main)
	for _, c := range s.branches {
		n += len(c)
	}
	return n
}

// branch returns the branch keyed by parentID, creating it when absent.
// This is the only place branches come into existence.
func (s *Store) branch(parentID string) []types.Block {
	c, ok := s.branches[parentID]
	if !ok {
		c = []types.Block{}
		s.branches[parentID] = c
	}
	return c
}

func (s *Store) appendTo(ref types.ChainRef, b types.Block) {
	if ref.IsMain() {
		s.main = append(s.main, b)
		return
	}
	s.branches[ref.Parent] = append(s.branch(ref.Parent), b)
}

func (s *Store) exists(ref types.ChainRef) bool {
	if ref.IsMain() {
		return true
	}
	_, ok := s.branches[ref.Parent]
	return ok
}

func (s *Store) chainOf(ref types.ChainRef) []types.Block {
	if ref.IsMain() {
		return s.main
	}
	return s.branches[ref.Parent]
}

func (s *Store) setChain(ref types.ChainRef, c []types.Block) {
	if ref.IsMain() {
		s.main = c
		return
	}
	s.branches[ref.Parent] = c
}

// locate scans the main chain, then branches in key order.
func (s *Store) locate(id string) (types.ChainRef, int) {
	if i := indexOf(s.main, id); i >= 0 {
		return types.MainChain, i
	}
	for _, key := range s.branchKeys() {
		if i := indexOf(s.branches[key], id); i >= 0 {
			return types.BranchOf(key), i
		}
	}
	return types.ChainRef{}, -1
}

func (s *Store) branchKeys() []string {
	keys := make([]string, 0, len(s.branches))
	for k := range s.branches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(c []types.Block, id string) int {
	for i, b := range c {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func clone(c []types.Block) []types.Block {
	if c == nil {
		return []types.Block{}
	}
	out := make([]types.Block, len(c))
	copy(out, c)
	return out
}
