// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import "github.com/pdiddy/explainer/pkg/types"

// MaxDepth bounds the tree projection. Branch nesting deeper than this is
// cut off rather than followed.
const MaxDepth = 64

// Node is one block in the tree projection. The root node has a zero
// Block and holds the main chain as its children.
type Node struct {
	Block    types.Block `json:"block"`
	Children []*Node     `json:"children"`
}

// Tree projects the store as a tree: the main chain under a virtual root,
// and under every block the branch keyed by its id. The traversal is
// iterative; a visited set and MaxDepth guarantee it terminates even if
// the branch table were to contain a cycle.
func (s *Store) Tree() *Node {
	root := &Node{Children: []*Node{}}

	type frame struct {
		node   *Node
		blocks []types.Block
		depth  int
	}

	visited := make(map[string]bool)
	stack := []frame{{node: root, blocks: s.main, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, b := range f.blocks {
			if visited[b.ID] {
				continue
			}
			visited[b.ID] = true

			child := &Node{Block: b, Children: []*Node{}}
			f.node.Children = append(f.node.Children, child)

			if f.depth+1 >= MaxDepth {
				continue
			}
			if sub, ok := s.branches[b.ID]; ok && len(sub) > 0 {
				stack = append(stack, frame{node: child, blocks: sub, depth: f.depth + 1})
			}
		}
	}
	return root
}

// Walk visits every node below root in depth-first order, passing its
// depth (main-chain blocks are depth 0).
func (n *Node) Walk(fn func(node *Node, depth int)) {
	type item struct {
		node  *Node
		depth int
	}
	stack := make([]item, 0, len(n.Children))
	for i := len(n.Children) - 1; i >= 0; i-- {
		stack = append(stack, item{n.Children[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(it.node, it.depth)
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}
