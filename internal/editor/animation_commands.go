package editor

import (
	"fmt"

	"github.com/sceneforge/sceneforge/internal/core/command"
	"github.com/sceneforge/sceneforge/internal/core/event"
	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// AddAnimationCommand inserts an animation into the player's container.
// First execute spawns it; after an undo the animation lives inside the
// command next to a reservation ticket, and redo puts it back into the very
// slot it came from so the handle survives undo/redo cycles. Finalize while
// reverted is the one moment the slot is truly given up.
type AddAnimationCommand struct {
	command.Base[*EditContext]
	state cmdState

	// nonExecuted/reverted: the owned value. executed: the live handle.
	animation scene.Animation
	handle    pool.Handle[scene.Animation]
	ticket    pool.Ticket[scene.Animation]

	prevSelection Selection
}

func NewAddAnimationCommand(animation scene.Animation) *AddAnimationCommand {
	return &AddAnimationCommand{state: nonExecuted, animation: animation}
}

// Handle returns the live handle; meaningful only while executed.
func (c *AddAnimationCommand) Handle() pool.Handle[scene.Animation] { return c.handle }

func (c *AddAnimationCommand) Name(*EditContext) string { return "Add Animation" }

func (c *AddAnimationCommand) Execute(ctx *EditContext) {
	switch c.state {
	case nonExecuted:
		c.handle = ctx.Player.Animations.Spawn(c.animation)
	case reverted:
		c.handle = ctx.Player.Animations.PutBack(c.ticket, c.animation)
	default:
		panic(fmt.Sprintf("AddAnimationCommand: execute in state %d", c.state))
	}
	c.animation = scene.Animation{}
	c.state = executed

	c.prevSelection, ctx.Selection = ctx.Selection, Selection{Animation: c.handle}
	event.Emit(ctx.Bus, event.SelectionChanged{})
	event.Emit(ctx.Bus, event.AnimationsChanged{AnimationIndex: c.handle.Index()})
}

func (c *AddAnimationCommand) Revert(ctx *EditContext) {
	if c.state != executed {
		panic(fmt.Sprintf("AddAnimationCommand: revert in state %d", c.state))
	}
	index := c.handle.Index()
	c.ticket, c.animation = ctx.Player.Animations.TakeReserve(c.handle)
	c.handle = pool.None[scene.Animation]()
	c.state = reverted

	c.prevSelection, ctx.Selection = ctx.Selection, c.prevSelection
	event.Emit(ctx.Bus, event.SelectionChanged{})
	event.Emit(ctx.Bus, event.AnimationsChanged{AnimationIndex: index})
}

func (c *AddAnimationCommand) Finalize(ctx *EditContext) {
	if c.state == reverted {
		ctx.Player.Animations.ForgetTicket(c.ticket)
	}
}

// RemoveAnimationCommand is the mirror image of AddAnimationCommand: execute
// takes the animation out behind a reservation, revert puts it back under
// the original handle, and finalize while executed forgets the ticket, at
// which point the removal is irreversible.
type RemoveAnimationCommand struct {
	command.Base[*EditContext]
	state cmdState

	handle    pool.Handle[scene.Animation]
	animation scene.Animation
	ticket    pool.Ticket[scene.Animation]

	prevSelection Selection
}

func NewRemoveAnimationCommand(handle pool.Handle[scene.Animation]) *RemoveAnimationCommand {
	return &RemoveAnimationCommand{state: nonExecuted, handle: handle}
}

func (c *RemoveAnimationCommand) Name(*EditContext) string { return "Remove Animation" }

func (c *RemoveAnimationCommand) Execute(ctx *EditContext) {
	if c.state != nonExecuted && c.state != reverted {
		panic(fmt.Sprintf("RemoveAnimationCommand: execute in state %d", c.state))
	}
	index := c.handle.Index()
	c.ticket, c.animation = ctx.Player.Animations.TakeReserve(c.handle)
	c.handle = pool.None[scene.Animation]()
	c.state = executed

	c.prevSelection, ctx.Selection = ctx.Selection, Selection{}
	event.Emit(ctx.Bus, event.SelectionChanged{})
	event.Emit(ctx.Bus, event.AnimationsChanged{AnimationIndex: index})
}

func (c *RemoveAnimationCommand) Revert(ctx *EditContext) {
	if c.state != executed {
		panic(fmt.Sprintf("RemoveAnimationCommand: revert in state %d", c.state))
	}
	c.handle = ctx.Player.Animations.PutBack(c.ticket, c.animation)
	c.animation = scene.Animation{}
	c.state = reverted

	c.prevSelection, ctx.Selection = ctx.Selection, c.prevSelection
	event.Emit(ctx.Bus, event.SelectionChanged{})
	event.Emit(ctx.Bus, event.AnimationsChanged{AnimationIndex: c.handle.Index()})
}

func (c *RemoveAnimationCommand) Finalize(ctx *EditContext) {
	if c.state == executed {
		ctx.Player.Animations.ForgetTicket(c.ticket)
	}
}

// Property commands use the swap pattern: execute and revert are the same
// exchange of the stored value with the live one.

type SetAnimationNameCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Value     string
}

func (c *SetAnimationNameCommand) Name(*EditContext) string { return "Set Animation Name" }

func (c *SetAnimationNameCommand) swap(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Name, c.Value = c.Value, a.Name
	event.Emit(ctx.Bus, event.AnimationModified{AnimationIndex: c.Animation.Index()})
}

func (c *SetAnimationNameCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetAnimationNameCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

type SetAnimationSpeedCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Value     float32
}

func (c *SetAnimationSpeedCommand) Name(*EditContext) string { return "Set Animation Speed" }

func (c *SetAnimationSpeedCommand) swap(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Speed, c.Value = c.Value, a.Speed
	event.Emit(ctx.Bus, event.AnimationModified{AnimationIndex: c.Animation.Index()})
}

func (c *SetAnimationSpeedCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetAnimationSpeedCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

type SetAnimationTimeSliceCommand struct {
	command.Base[*EditContext]
	Animation  pool.Handle[scene.Animation]
	Start, End float32
}

func (c *SetAnimationTimeSliceCommand) Name(*EditContext) string { return "Set Animation Time Slice" }

func (c *SetAnimationTimeSliceCommand) swap(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Start, c.Start = c.Start, a.Start
	a.End, c.End = c.End, a.End
	event.Emit(ctx.Bus, event.AnimationModified{AnimationIndex: c.Animation.Index()})
}

func (c *SetAnimationTimeSliceCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetAnimationTimeSliceCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

type SetLoopingCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Value     bool
}

func (c *SetLoopingCommand) Name(*EditContext) string { return "Set Animation Looping" }

func (c *SetLoopingCommand) swap(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Looping, c.Value = c.Value, a.Looping
	event.Emit(ctx.Bus, event.AnimationModified{AnimationIndex: c.Animation.Index()})
}

func (c *SetLoopingCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetLoopingCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

// SelectCommand changes the selection. Insignificant: it never dirties the
// document, it only exists so selection follows undo history.
type SelectCommand struct {
	command.Base[*EditContext]
	Value Selection
}

func (c *SelectCommand) Name(*EditContext) string { return "Select" }

func (c *SelectCommand) swap(ctx *EditContext) {
	ctx.Selection, c.Value = c.Value, ctx.Selection
	event.Emit(ctx.Bus, event.SelectionChanged{})
}

func (c *SelectCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SelectCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

func (c *SelectCommand) Significant() bool { return false }
