package dependency

// visitState is the DFS marker used by TopologicalSort.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// Graph is a directed graph of component dependencies.  An edge From -> To
// means From depends on To, so To has to be initialized first.
//
// Nodes are implicit: a key is part of the graph as long as it appears on
// either end of at least one edge.
//
// Graph is *not* thread-safe; it is meant to be populated during a
// single-threaded registration phase.  Callers must synchronise if they write
// concurrently.
type Graph struct {
	forward map[ComponentKey]map[ComponentKey]Kind
	reverse map[ComponentKey]map[ComponentKey]Kind

	// order caches the last successful topological sort.  It is only valid
	// while dirty is false.
	order []ComponentKey
	dirty bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		forward: make(map[ComponentKey]map[ComponentKey]Kind),
		reverse: make(map[ComponentKey]map[ComponentKey]Kind),
		dirty:   true,
	}
}

// AddDependency records that from depends on to.  Re-adding an existing pair
// replaces its kind.
func (g *Graph) AddDependency(from, to ComponentKey, kind Kind) {
	if g.forward[from] == nil {
		g.forward[from] = make(map[ComponentKey]Kind)
	}
	if g.reverse[to] == nil {
		g.reverse[to] = make(map[ComponentKey]Kind)
	}
	g.forward[from][to] = kind
	g.reverse[to][from] = kind
	g.dirty = true
}

// RemoveDependency removes the edge from -> to and reports whether it existed.
func (g *Graph) RemoveDependency(from, to ComponentKey) bool {
	if _, ok := g.forward[from][to]; !ok {
		return false
	}
	if _, ok := g.reverse[to][from]; !ok {
		return false
	}

	delete(g.forward[from], to)
	if len(g.forward[from]) == 0 {
		delete(g.forward, from)
	}
	delete(g.reverse[to], from)
	if len(g.reverse[to]) == 0 {
		delete(g.reverse, to)
	}
	g.dirty = true
	return true
}

// Dependencies returns the direct dependencies of key.  When kinds are given
// only edges of those kinds are returned.
func (g *Graph) Dependencies(key ComponentKey, kinds ...Kind) []ComponentKey {
	return filterNeighbours(g.forward[key], kinds)
}

// Dependents returns the components that directly depend on key.  When kinds
// are given only edges of those kinds are returned.
func (g *Graph) Dependents(key ComponentKey, kinds ...Kind) []ComponentKey {
	return filterNeighbours(g.reverse[key], kinds)
}

// OutgoingEdges returns the edges leaving key, sorted by target.
func (g *Graph) OutgoingEdges(key ComponentKey) []Edge {
	targets := filterNeighbours(g.forward[key], nil)
	edges := make([]Edge, 0, len(targets))
	for _, to := range targets {
		edges = append(edges, Edge{From: key, To: to, Kind: g.forward[key][to]})
	}
	return edges
}

// HasDependency reports whether from directly depends on to.
func (g *Graph) HasDependency(from, to ComponentKey) bool {
	_, ok := g.forward[from][to]
	return ok
}

// DependencyKind returns the kind of the edge from -> to, if any.
func (g *Graph) DependencyKind(from, to ComponentKey) (Kind, bool) {
	kind, ok := g.forward[from][to]
	return kind, ok
}

// Contains reports whether key is on either end of some edge.
func (g *Graph) Contains(key ComponentKey) bool {
	if _, ok := g.forward[key]; ok {
		return true
	}
	_, ok := g.reverse[key]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	n := len(g.forward)
	for key := range g.reverse {
		if _, ok := g.forward[key]; !ok {
			n++
		}
	}
	return n
}

// Nodes returns every node, sorted.
func (g *Graph) Nodes() []ComponentKey {
	nodes := make([]ComponentKey, 0, len(g.forward)+len(g.reverse))
	for key := range g.forward {
		nodes = append(nodes, key)
	}
	for key := range g.reverse {
		if _, ok := g.forward[key]; !ok {
			nodes = append(nodes, key)
		}
	}
	sortKeys(nodes)
	return nodes
}

// Edges returns every edge, sorted by source and then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.Nodes() {
		edges = append(edges, g.OutgoingEdges(from)...)
	}
	return edges
}

// TopologicalSort returns every node ordered so that each dependency comes
// before its dependents, i.e. an initialization order.  A *CycleError is
// returned if the graph is not acyclic.
//
// The result is cached until the next mutation.  Independent components are
// visited in key order, but callers should only rely on the partial order.
func (g *Graph) TopologicalSort() ([]ComponentKey, error) {
	if !g.dirty && g.order != nil {
		return cloneKeys(g.order), nil
	}

	nodes := g.Nodes()
	state := make(map[ComponentKey]visitState, len(nodes))
	postOrder := make([]ComponentKey, 0, len(nodes))
	var path []ComponentKey

	var visit func(key ComponentKey) error
	visit = func(key ComponentKey) error {
		switch state[key] {
		case done:
			return nil
		case inProgress:
			return newCycleError(path, key)
		}

		state[key] = inProgress
		path = append(path, key)
		for _, dep := range g.Dependents(key) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[key] = done
		postOrder = append(postOrder, key)
		return nil
	}

	for _, key := range nodes {
		if err := visit(key); err != nil {
			return nil, err
		}
	}

	// Walking dependents yields dependents-first post-order; reversing it puts
	// every dependency ahead of the components that need it.
	order := make([]ComponentKey, len(postOrder))
	for i, key := range postOrder {
		order[len(postOrder)-1-i] = key
	}

	g.order = order
	g.dirty = false
	return cloneKeys(order), nil
}

// ReverseTopologicalSort returns the exact reverse of TopologicalSort, i.e. a
// shutdown order where dependents stop before their dependencies.
func (g *Graph) ReverseTopologicalSort() ([]ComponentKey, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// Verify reports whether the graph is acyclic.
func (g *Graph) Verify() bool {
	_, err := g.TopologicalSort()
	return err == nil
}

func filterNeighbours(neighbours map[ComponentKey]Kind, kinds []Kind) []ComponentKey {
	res := make([]ComponentKey, 0, len(neighbours))
	for key, kind := range neighbours {
		if len(kinds) > 0 && !containsKind(kinds, kind) {
			continue
		}
		res = append(res, key)
	}
	sortKeys(res)
	return res
}

func containsKind(kinds []Kind, kind Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func cloneKeys(keys []ComponentKey) []ComponentKey {
	out := make([]ComponentKey, len(keys))
	copy(out, keys)
	return out
}
