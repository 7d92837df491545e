package editor

import (
	"fmt"

	"github.com/sceneforge/sceneforge/internal/core/command"
	"github.com/sceneforge/sceneforge/internal/core/event"
	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// AddNodeCommand adds a node under a parent. Same pool protocol as
// AddAnimationCommand, plus the graph link bookkeeping.
type AddNodeCommand struct {
	command.Base[*EditContext]
	state  cmdState
	Parent pool.Handle[scene.Node]

	node   scene.Node
	handle pool.Handle[scene.Node]
	ticket pool.Ticket[scene.Node]
}

func NewAddNodeCommand(node scene.Node, parent pool.Handle[scene.Node]) *AddNodeCommand {
	return &AddNodeCommand{state: nonExecuted, node: node, Parent: parent}
}

// Handle returns the live handle; meaningful only while executed.
func (c *AddNodeCommand) Handle() pool.Handle[scene.Node] { return c.handle }

func (c *AddNodeCommand) Name(*EditContext) string { return "Add Node" }

func (c *AddNodeCommand) Execute(ctx *EditContext) {
	switch c.state {
	case nonExecuted:
		c.handle = ctx.Graph.AddNode(c.node, c.Parent)
	case reverted:
		c.handle = ctx.Graph.Nodes().PutBack(c.ticket, c.node)
		parent := c.Parent
		if parent.IsNone() {
			parent = ctx.Graph.Root()
		}
		ctx.Graph.LinkNodes(c.handle, parent)
	default:
		panic(fmt.Sprintf("AddNodeCommand: execute in state %d", c.state))
	}
	c.node = scene.Node{}
	c.state = executed
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *AddNodeCommand) Revert(ctx *EditContext) {
	if c.state != executed {
		panic(fmt.Sprintf("AddNodeCommand: revert in state %d", c.state))
	}
	ctx.Graph.UnlinkNode(c.handle)
	c.ticket, c.node = ctx.Graph.Nodes().TakeReserve(c.handle)
	c.handle = pool.None[scene.Node]()
	c.state = reverted
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *AddNodeCommand) Finalize(ctx *EditContext) {
	if c.state == reverted {
		ctx.Graph.Nodes().ForgetTicket(c.ticket)
	}
}

// RemoveNodeCommand removes a single leaf node. Callers validate that the
// node has no children before constructing the command; subtree removal is
// a Group of leaf removals built bottom-up.
type RemoveNodeCommand struct {
	command.Base[*EditContext]
	state cmdState

	handle pool.Handle[scene.Node]
	node   scene.Node
	ticket pool.Ticket[scene.Node]
	// parent and childPos restore the link at the same position on revert.
	parent   pool.Handle[scene.Node]
	childPos int
}

func NewRemoveNodeCommand(handle pool.Handle[scene.Node]) *RemoveNodeCommand {
	return &RemoveNodeCommand{state: nonExecuted, handle: handle}
}

func (c *RemoveNodeCommand) Name(*EditContext) string { return "Remove Node" }

func (c *RemoveNodeCommand) Execute(ctx *EditContext) {
	if c.state != nonExecuted && c.state != reverted {
		panic(fmt.Sprintf("RemoveNodeCommand: execute in state %d", c.state))
	}
	node := ctx.Graph.Nodes().Borrow(c.handle)
	if len(node.Children) > 0 {
		panic(fmt.Sprintf("RemoveNodeCommand: node %q still has %d children", node.Name, len(node.Children)))
	}
	c.parent = node.Parent
	c.childPos = -1
	if p := ctx.Graph.Node(c.parent); p != nil {
		for i, child := range p.Children {
			if child == c.handle {
				c.childPos = i
				break
			}
		}
	}
	ctx.Graph.UnlinkNode(c.handle)
	c.ticket, c.node = ctx.Graph.Nodes().TakeReserve(c.handle)
	c.handle = pool.None[scene.Node]()
	c.state = executed
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *RemoveNodeCommand) Revert(ctx *EditContext) {
	if c.state != executed {
		panic(fmt.Sprintf("RemoveNodeCommand: revert in state %d", c.state))
	}
	c.handle = ctx.Graph.Nodes().PutBack(c.ticket, c.node)
	c.node = scene.Node{}
	if c.parent.IsSome() {
		ctx.Graph.Nodes().Borrow(c.handle).Parent = c.parent
		p := ctx.Graph.Nodes().Borrow(c.parent)
		at := c.childPos
		if at < 0 || at > len(p.Children) {
			at = len(p.Children)
		}
		p.Children = append(p.Children, pool.None[scene.Node]())
		copy(p.Children[at+1:], p.Children[at:])
		p.Children[at] = c.handle
	}
	c.state = reverted
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *RemoveNodeCommand) Finalize(ctx *EditContext) {
	if c.state == executed {
		ctx.Graph.Nodes().ForgetTicket(c.ticket)
	}
}

// MoveNodeCommand relinks a node under a new parent with the swap pattern.
type MoveNodeCommand struct {
	command.Base[*EditContext]
	Node   pool.Handle[scene.Node]
	Parent pool.Handle[scene.Node]
}

func (c *MoveNodeCommand) Name(*EditContext) string { return "Move Node" }

func (c *MoveNodeCommand) swap(ctx *EditContext) {
	old := ctx.Graph.Nodes().Borrow(c.Node).Parent
	ctx.Graph.LinkNodes(c.Node, c.Parent)
	c.Parent = old
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *MoveNodeCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *MoveNodeCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

// SetNodePositionCommand sets a node transform component with the swap
// pattern.
type SetNodePositionCommand struct {
	command.Base[*EditContext]
	Node  pool.Handle[scene.Node]
	Value scene.Vector3
}

func (c *SetNodePositionCommand) Name(*EditContext) string { return "Set Node Position" }

func (c *SetNodePositionCommand) swap(ctx *EditContext) {
	n := ctx.Graph.Nodes().Borrow(c.Node)
	n.Position, c.Value = c.Value, n.Position
	event.Emit(ctx.Bus, event.GraphChanged{})
}

func (c *SetNodePositionCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetNodePositionCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

// RemoveSubtreeCommand builds the bottom-up group of leaf removals for a
// whole subtree.
func RemoveSubtreeCommand(ctx *EditContext, root pool.Handle[scene.Node]) *command.Group[*EditContext] {
	var order []pool.Handle[scene.Node]
	var walk func(h pool.Handle[scene.Node])
	walk = func(h pool.Handle[scene.Node]) {
		node := ctx.Graph.Node(h)
		if node == nil {
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
		order = append(order, h)
	}
	walk(root)

	g := command.NewGroup[*EditContext]().WithName("Remove Node Subtree")
	for _, h := range order {
		g.Push(NewRemoveNodeCommand(h))
	}
	return g
}
