// Package command implements the editor's reversible-operation machinery:
// the Command interface, a composite Group, and the cursor-based undo/redo
// Stack.
package command

import "strings"

// Command is one undoable unit of work over a mutable context Ctx. Execute
// runs when the command is first pushed and on every redo; Revert undoes it
// and is guaranteed to be called in strict reverse execution order; Finalize
// runs at most once, when the command leaves the stack for good and must
// release anything it still holds (typically a pool ticket).
type Command[Ctx any] interface {
	// Name is what the user sees in undo/redo menus, e.g. "Add Track".
	Name(ctx Ctx) string
	Execute(ctx Ctx)
	Revert(ctx Ctx)
	Finalize(ctx Ctx)
	// Significant reports whether the command changes document data.
	// Insignificant commands (selection changes) do not dirty the document.
	Significant() bool
}

// Base supplies the default no-op Finalize and Significant=true so concrete
// commands only implement what they need.
type Base[Ctx any] struct{}

func (Base[Ctx]) Finalize(Ctx)      {}
func (Base[Ctx]) Significant() bool { return true }

// Group runs several commands as one stack entry: executed in order,
// reverted in reverse order, finalized together.
type Group[Ctx any] struct {
	commands   []Command[Ctx]
	customName string
}

func NewGroup[Ctx any](commands ...Command[Ctx]) *Group[Ctx] {
	return &Group[Ctx]{commands: commands}
}

// WithName replaces the automatically joined name.
func (g *Group[Ctx]) WithName(name string) *Group[Ctx] {
	g.customName = name
	return g
}

func (g *Group[Ctx]) Push(cmd Command[Ctx]) {
	g.commands = append(g.commands, cmd)
}

func (g *Group[Ctx]) Len() int      { return len(g.commands) }
func (g *Group[Ctx]) IsEmpty() bool { return len(g.commands) == 0 }

func (g *Group[Ctx]) Name(ctx Ctx) string {
	if g.customName != "" {
		return g.customName
	}
	names := make([]string, 0, len(g.commands))
	for _, cmd := range g.commands {
		names = append(names, cmd.Name(ctx))
	}
	return "Group: " + strings.Join(names, ", ")
}

func (g *Group[Ctx]) Execute(ctx Ctx) {
	for _, cmd := range g.commands {
		cmd.Execute(ctx)
	}
}

func (g *Group[Ctx]) Revert(ctx Ctx) {
	for i := len(g.commands) - 1; i >= 0; i-- {
		g.commands[i].Revert(ctx)
	}
}

func (g *Group[Ctx]) Finalize(ctx Ctx) {
	for _, cmd := range g.commands {
		cmd.Finalize(ctx)
	}
	g.commands = nil
}

func (g *Group[Ctx]) Significant() bool {
	for _, cmd := range g.commands {
		if cmd.Significant() {
			return true
		}
	}
	return false
}
