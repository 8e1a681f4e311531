// Package graph assembles classified dataset objects into one directed
// graph: a node table keyed by declared id, a type table keyed by
// recordTypeId, and bidirectional adjacency derived from reference
// extraction. Graphs are immutable once built; a new snapshot gets a new
// graph.
package graph

import (
	"sort"
	"time"
)

// Node is one graph node. Identity here is the object's own fields.id,
// distinct from the classifier's structural identity.
type Node struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"` // dataset, type, or record
	File     string         `json:"file"`
	TypeID   string         `json:"typeId"`
	RecordID string         `json:"recordId,omitempty"`
	Fields   map[string]any `json:"fields"`
	Body     string         `json:"body"`
	Created  time.Time      `json:"created,omitempty"`
	Updated  time.Time      `json:"updated,omitempty"`
}

// Identity returns the classifier identity of the node's backing object.
func (n *Node) Identity() string {
	if n.RecordID != "" {
		return n.TypeID + ":" + n.RecordID
	}
	return n.TypeID
}

// FieldDef is one entry of a type's field-definition schema.
type FieldDef struct {
	Required bool `json:"required"`
}

// CompositionRule requires records of the owning type to link to at least
// Min (and at most Max, when set) records of RecordTypeID under the named
// component.
type CompositionRule struct {
	Name         string `json:"name"`
	RecordTypeID string `json:"recordTypeId"`
	Min          int    `json:"min"`
	Max          *int   `json:"max,omitempty"`
}

// TypeDef is the schema a type object declares for its records.
type TypeDef struct {
	RecordTypeID  string              `json:"recordTypeId"`
	NodeID        string              `json:"nodeId,omitempty"`
	File          string              `json:"file"`
	DisplayFields []string            `json:"displayFields,omitempty"`
	FieldDefs     map[string]FieldDef `json:"fieldDefs,omitempty"`
	Composition   []CompositionRule   `json:"composition,omitempty"`
}

// Graph is the assembled dataset graph.
type Graph struct {
	nodes      map[string]*Node
	byIdentity map[string]string // classifier identity -> node id
	types      map[string]*TypeDef
	outgoing   map[string]map[string]struct{}
	incoming   map[string]map[string]struct{}
}

// Node returns the node with the given declared id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Resolve returns the node for a reference target, trying declared ids
// first and classifier identities second.
func (g *Graph) Resolve(target string) (*Node, bool) {
	if n, ok := g.nodes[target]; ok {
		return n, true
	}
	if id, ok := g.byIdentity[target]; ok {
		return g.nodes[id], true
	}
	return nil, false
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LinksFrom returns the ids of nodes the given node links to, sorted.
func (g *Graph) LinksFrom(id string) []string {
	return sortedSet(g.outgoing[id])
}

// LinksTo returns the ids of nodes linking to the given node, sorted.
func (g *Graph) LinksTo(id string) []string {
	return sortedSet(g.incoming[id])
}

// RecordTypeID returns the record-type id declared by a type node, or ""
// when the node does not define a type.
func (g *Graph) RecordTypeID(nodeID string) string {
	for _, def := range g.types {
		if def.NodeID == nodeID {
			return def.RecordTypeID
		}
	}
	return ""
}

// TypeOf returns the type definition owning a record node.
func (g *Graph) TypeOf(n *Node) (*TypeDef, bool) {
	def, ok := g.types[n.TypeID]
	return def, ok
}

// TypeByRecordTypeID returns the type definition registered for a
// record-type id.
func (g *Graph) TypeByRecordTypeID(recordTypeID string) (*TypeDef, bool) {
	def, ok := g.types[recordTypeID]
	return def, ok
}

// Types returns all type definitions sorted by record-type id.
func (g *Graph) Types() []*TypeDef {
	out := make([]*TypeDef, 0, len(g.types))
	for _, def := range g.types {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordTypeID < out[j].RecordTypeID })
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
