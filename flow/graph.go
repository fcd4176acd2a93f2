package flow

import (
	"fmt"
	"sort"

	"github.com/kbukum/flowcheck/errors"
	"github.com/kbukum/flowcheck/util"
)

// Graph is a validated check dependency graph with a deterministic
// layering.
type Graph struct {
	nodes  map[string]*Node
	layers [][]string
}

// NewGraph validates the specs and computes the layered execution order.
// It rejects empty IDs, nil checks, duplicate IDs, unknown dependencies,
// and cycles, including self-dependencies.
func NewGraph(specs []Spec) (*Graph, error) {
	nodes := make(map[string]*Node, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return nil, errors.InvalidInput("id", "node id must not be empty")
		}
		if s.Check == nil {
			return nil, errors.InvalidInput("check", fmt.Sprintf("node %s has no check", s.ID))
		}
		if _, exists := nodes[s.ID]; exists {
			return nil, errors.DuplicateNode(s.ID)
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		nodes[s.ID] = &Node{
			ID:        s.ID,
			Name:      name,
			Check:     s.Check,
			DependsOn: append([]string(nil), s.DependsOn...),
			Status:    StatusPending,
		}
	}

	// Sorted iteration keeps the reported error stable when several
	// nodes reference missing dependencies.
	for _, id := range util.SortedKeys(nodes) {
		for _, dep := range nodes[id].DependsOn {
			if dep == id {
				return nil, errors.DependencyCycle([]string{id})
			}
			if _, ok := nodes[dep]; !ok {
				return nil, errors.UnknownDependency(id, dep)
			}
		}
	}

	layers, err := buildLayers(nodes)
	if err != nil {
		return nil, err
	}
	return &Graph{nodes: nodes, layers: layers}, nil
}

// buildLayers groups nodes into dependency layers with Kahn's algorithm.
// Each layer is sorted lexicographically, so identical specs always
// produce identical layers regardless of map iteration order.
func buildLayers(nodes map[string]*Node) ([][]string, error) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for id, n := range nodes {
		inDegree[id] = len(n.DependsOn)
		for _, dep := range n.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	var layers [][]string
	placed := 0
	for len(ready) > 0 {
		sort.Strings(ready)
		layer := ready
		ready = nil
		layers = append(layers, layer)
		placed += len(layer)

		for _, id := range layer {
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					ready = append(ready, dependent)
				}
			}
		}
	}

	if placed != len(nodes) {
		var remaining []string
		for id, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, errors.DependencyCycle(remaining)
	}
	return layers, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in ascending ID order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range util.SortedKeys(g.nodes) {
		out = append(out, g.nodes[id])
	}
	return out
}

// Layers returns the layered execution order. Callers must not modify
// the returned slices.
func (g *Graph) Layers() [][]string {
	return g.layers
}

// Order returns node IDs in execution order: layer by layer,
// lexicographic within each layer.
func (g *Graph) Order() []string {
	out := make([]string, 0, len(g.nodes))
	for _, layer := range g.layers {
		out = append(out, layer...)
	}
	return out
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}
