// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Block is one unit of explanation intent inside a chain.
// Fields are fixed after creation; reordering moves a block but never
// mutates it.
type Block struct {
	// ID is an opaque identifier, unique across the main chain and all branches.
	ID string `json:"id" yaml:"id"`

	// Type is a short label such as "Definition", "BranchOf(Claim)" or
	// "Definition+Example" for blend results.
	Type string `json:"type" yaml:"type"`

	// Icon is a display glyph. Cosmetic only.
	Icon string `json:"icon" yaml:"icon"`

	// Description states what the block is meant to communicate.
	Description string `json:"description" yaml:"description"`

	// FullText holds long-form generated text. Set only on blend results.
	FullText string `json:"fullText,omitempty" yaml:"full_text,omitempty"`
}

// Template is the prototype a new block is copied from.
type Template struct {
	Type        string `json:"type" yaml:"type"`
	Icon        string `json:"icon" yaml:"icon"`
	Description string `json:"description" yaml:"description"`
}

// ChainRef identifies a chain: the main chain when Parent is empty,
// otherwise the branch keyed by the Parent block id. The active-chain
// pointer is a ChainRef.
type ChainRef struct {
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// MainChain is the reference to the main chain.
var MainChain = ChainRef{}

// BranchOf returns the reference to the branch keyed by parentID.
func BranchOf(parentID string) ChainRef {
	return ChainRef{Parent: parentID}
}

// IsMain reports whether r refers to the main chain.
func (r ChainRef) IsMain() bool {
	return r.Parent == ""
}

// String returns "main" or "branch:<parent>".
func (r ChainRef) String() string {
	if r.IsMain() {
		return "main"
	}
	return "branch:" + r.Parent
}

// HistoryEntry records one completed generation. Entries are never
// mutated or deleted.
type HistoryEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Output    string    `json:"output" yaml:"output"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	Source    ChainRef  `json:"source" yaml:"source"`
	Prompt    string    `json:"prompt" yaml:"prompt"`
}

// ExportDocument is the serialized form of a session consumed by the
// export formats.
type ExportDocument struct {
	Prompt      string  `json:"prompt" yaml:"prompt"`
	Structure   []Block `json:"structure" yaml:"structure"`
	Explanation string  `json:"explanation" yaml:"explanation"`
}
