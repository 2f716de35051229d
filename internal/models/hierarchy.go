package models

import (
	"sort"
	"time"
)

type NodeKind string

const (
	KindProvider    NodeKind = "provider"
	KindSubprovider NodeKind = "subprovider"
	KindPartner     NodeKind = "partner"
	KindAccount     NodeKind = "account"
)

func (k NodeKind) IsValid() bool {
	switch k {
	case KindProvider, KindSubprovider, KindPartner, KindAccount:
		return true
	}
	return false
}

type HierarchyNode struct {
	ID        int64            `db:"id" json:"id"`
	ParentID  *int64           `db:"parent_id" json:"parent_id,omitempty"`
	Name      string           `db:"name" json:"name"`
	Kind      NodeKind         `db:"kind" json:"kind"`
	AccountID *string          `db:"account_id" json:"account_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	Children  []*HierarchyNode `db:"-" json:"children,omitempty"`
}

// BuildForest links a flat node list into trees and returns the roots.
// Nodes whose parent is missing from the list are treated as roots.
// Siblings are ordered by id. The input nodes are modified in place.
func BuildForest(nodes []*HierarchyNode) []*HierarchyNode {
	byID := make(map[int64]*HierarchyNode, len(nodes))
	for _, n := range nodes {
		n.Children = nil
		byID[n.ID] = n
	}

	var roots []*HierarchyNode
	for _, n := range nodes {
		if n.ParentID != nil {
			if p, ok := byID[*n.ParentID]; ok && p != n {
				p.Children = append(p.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	for _, n := range nodes {
		sortNodes(n.Children)
	}
	return roots
}

// SubtreesForAccount returns the topmost nodes in the forest owned by
// accountID, each with its full subtree. Nested matches are not repeated.
func SubtreesForAccount(roots []*HierarchyNode, accountID string) []*HierarchyNode {
	var out []*HierarchyNode
	var walk func(n *HierarchyNode)
	walk = func(n *HierarchyNode) {
		if n.AccountID != nil && *n.AccountID == accountID {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// Find searches the forest for id.
func Find(roots []*HierarchyNode, id int64) *HierarchyNode {
	for _, r := range roots {
		if r.ID == id {
			return r
		}
		if n := Find(r.Children, id); n != nil {
			return n
		}
	}
	return nil
}

func sortNodes(nodes []*HierarchyNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
