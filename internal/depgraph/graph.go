package depgraph

import (
	"fmt"
	"strings"
)

// Graph is a directed graph where an edge from a to b means a needs b.
// Nodes and edges keep their insertion order so every walk is deterministic.
type Graph struct {
	order []string
	nodes map[string]*node
}

type node struct {
	id   string
	deps []*node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a node. Adding an existing id does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// AddEdge records that from depends on to. Self edges are allowed and show
// up as cycles.
func (g *Graph) AddEdge(from, to string) error {
	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}
	for _, d := range fromNode.deps {
		if d == toNode {
			return nil
		}
	}
	fromNode.deps = append(fromNode.deps, toNode)
	return nil
}

// Dependencies returns the ids id depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, len(n.deps))
	for i, d := range n.deps {
		deps[i] = d.id
	}
	return deps, nil
}

// Cycle is a closed path, first and last element equal.
type Cycle []string

func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// Cycles returns every cycle reached by a depth-first walk, each reported
// once from the first node of it that the walk entered.
func (g *Graph) Cycles() []Cycle {
	// permanent: fully visited. onStack: in the current walk, with its
	// position in stack.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string
	var cycles []Cycle

	var visit func(n *node)
	visit = func(n *node) {
		if permanent[n.id] {
			return
		}
		if pos, ok := onStack[n.id]; ok {
			c := append(Cycle{}, stack[pos:]...)
			cycles = append(cycles, append(c, n.id))
			return
		}
		onStack[n.id] = len(stack)
		stack = append(stack, n.id)

		for _, dep := range n.deps {
			visit(dep)
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
	}

	for _, id := range g.order {
		visit(g.nodes[id])
	}
	return cycles
}

// Order returns every node with its dependencies before it. It fails when
// the graph has a cycle.
func (g *Graph) Order() ([]string, error) {
	if cycles := g.Cycles(); len(cycles) > 0 {
		return nil, fmt.Errorf("cycle detected: %s", cycles[0])
	}
	seen := make(map[string]bool, len(g.order))
	out := make([]string, 0, len(g.order))

	var visit func(n *node)
	visit = func(n *node) {
		if seen[n.id] {
			return
		}
		seen[n.id] = true
		for _, dep := range n.deps {
			visit(dep)
		}
		out = append(out, n.id)
	}
	for _, id := range g.order {
		visit(g.nodes[id])
	}
	return out, nil
}
