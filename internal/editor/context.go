// Package editor binds the command stack to the scene model: the edit
// context commands mutate, the selection state, and the reversible domain
// commands built on the pool's take/reserve protocol.
package editor

import (
	"go.uber.org/zap"

	"github.com/sceneforge/sceneforge/internal/core/command"
	"github.com/sceneforge/sceneforge/internal/core/event"
	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// Selection is the editor's current focus. Selection changes run through the
// command stack like everything else (so undo restores them) but are
// insignificant: they never dirty the document.
type Selection struct {
	Animation pool.Handle[scene.Animation]
	Tracks    []int
	Nodes     []pool.Handle[scene.Node]
}

// EditContext is the mutable world handed to every command: the scene graph,
// the animation player being edited, selection, and the change bus views
// re-sync from.
type EditContext struct {
	Graph     *scene.Graph
	Player    *scene.AnimationPlayer
	Selection Selection
	Bus       *event.Bus
	Log       *zap.Logger
}

// NewEditContext wires an edit context over a fresh graph and player.
func NewEditContext(log *zap.Logger) *EditContext {
	g := scene.NewGraph()
	return &EditContext{
		Graph:  g,
		Player: scene.NewAnimationPlayer(g.Root()),
		Bus:    event.NewBus(),
		Log:    log,
	}
}

// Command and Stack are the editor-side instantiations of the generic
// machinery.
type Command = command.Command[*EditContext]

type Stack = command.Stack[*EditContext]

// NewStack creates the editor undo stack.
func NewStack(maxCapacity int, log *zap.Logger) *Stack {
	return command.NewStack[*EditContext](maxCapacity, log)
}

// cmdState tags a pool-backed command's lifecycle. Which resources the
// command holds (owned value, live handle, or ticket) depends on the state,
// and the tag is what keeps illegal combinations unrepresentable in practice:
// every transition overwrites the whole resource set at once.
type cmdState uint8

const (
	nonExecuted cmdState = iota
	executed
	reverted
)
