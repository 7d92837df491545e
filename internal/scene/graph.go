package scene

import "github.com/sceneforge/sceneforge/internal/core/pool"

// Graph owns the node pool and keeps parent/child links consistent. Every
// graph has a root node; nodes added without an explicit parent are linked
// under it.
type Graph struct {
	nodes *pool.Pool[Node]
	root  pool.Handle[Node]
}

func NewGraph() *Graph {
	g := &Graph{nodes: pool.New[Node]()}
	g.root = g.nodes.Spawn(NewNode("__ROOT__"))
	return g
}

// LoadGraph reassembles a graph around a node pool rebuilt from serialized
// records. The caller guarantees root is live in the pool.
func LoadGraph(nodes *pool.Pool[Node], root pool.Handle[Node]) *Graph {
	return &Graph{nodes: nodes, root: root}
}

// Nodes exposes the underlying pool for commands that need the
// take/reserve protocol.
func (g *Graph) Nodes() *pool.Pool[Node] { return g.nodes }

func (g *Graph) Root() pool.Handle[Node] { return g.root }

// AddNode spawns the node and links it under parent (the root if parent is
// the none handle).
func (g *Graph) AddNode(node Node, parent pool.Handle[Node]) pool.Handle[Node] {
	if parent.IsNone() {
		parent = g.root
	}
	node.Parent = pool.None[Node]()
	handle := g.nodes.Spawn(node)
	g.LinkNodes(handle, parent)
	return handle
}

// LinkNodes detaches child from its current parent and attaches it to the
// new one.
func (g *Graph) LinkNodes(child, parent pool.Handle[Node]) {
	g.UnlinkNode(child)
	g.nodes.Borrow(child).Parent = parent
	p := g.nodes.Borrow(parent)
	p.Children = append(p.Children, child)
}

// UnlinkNode detaches the node from its parent, leaving it (and its own
// children) in the pool. A node without a parent is untouched.
func (g *Graph) UnlinkNode(handle pool.Handle[Node]) {
	node := g.nodes.Borrow(handle)
	if node.Parent.IsNone() {
		return
	}
	if parent := g.nodes.TryBorrow(node.Parent); parent != nil {
		for i, c := range parent.Children {
			if c == handle {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
	}
	node.Parent = pool.None[Node]()
}

// RemoveNode frees the node and all of its descendants, returning the number
// of nodes removed.
func (g *Graph) RemoveNode(handle pool.Handle[Node]) int {
	if !g.nodes.IsValid(handle) {
		return 0
	}
	g.UnlinkNode(handle)
	removed := 0
	var freeRecursive func(h pool.Handle[Node])
	freeRecursive = func(h pool.Handle[Node]) {
		node, ok := g.nodes.TryFree(h)
		if !ok {
			return
		}
		removed++
		for _, c := range node.Children {
			freeRecursive(c)
		}
	}
	freeRecursive(handle)
	return removed
}

// Node returns the node behind the handle, nil if stale.
func (g *Graph) Node(handle pool.Handle[Node]) *Node {
	return g.nodes.TryBorrow(handle)
}

// FindByName returns the handle of the first node with the given name, in
// slot order, or the none handle.
func (g *Graph) FindByName(name string) pool.Handle[Node] {
	found := pool.None[Node]()
	g.nodes.Pairs(func(h pool.Handle[Node], n *Node) {
		if found.IsNone() && n.Name == name {
			found = h
		}
	})
	return found
}

// NodeCount returns the number of live nodes, the root included.
func (g *Graph) NodeCount() int {
	return g.nodes.AliveCount()
}
