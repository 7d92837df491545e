package editor

import (
	"testing"

	"go.uber.org/zap"

	"github.com/sceneforge/sceneforge/internal/core/event"
	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

func newTestEnv() (*EditContext, *Stack) {
	return NewEditContext(zap.NewNop()), NewStack(0, zap.NewNop())
}

func TestAddAnimationUndoRedo(t *testing.T) {
	ctx, stack := newTestEnv()

	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)

	h := add.Handle()
	if a := ctx.Player.Animations.TryBorrow(h); a == nil || a.Name != "walk" {
		t.Fatalf("Expected walk animation live, got %v", a)
	}
	if ctx.Selection.Animation != h {
		t.Errorf("Expected selection to follow new animation")
	}

	stack.Undo(ctx)
	if ctx.Player.Animations.TryBorrow(h) != nil {
		t.Error("Expected animation gone after undo")
	}
	if ctx.Player.Animations.AliveCount() != 0 {
		t.Errorf("Expected 0 alive, got %d", ctx.Player.Animations.AliveCount())
	}

	stack.Redo(ctx)
	// Redo restores the value into the reserved slot, so the handle's
	// identity survives the undo/redo cycle.
	if a := ctx.Player.Animations.TryBorrow(h); a == nil || a.Name != "walk" {
		t.Errorf("Expected original handle live after redo, got %v", a)
	}
	if add.Handle() != h {
		t.Errorf("Expected handle identity preserved, got %v then %v", h, add.Handle())
	}
}

func TestRemoveAnimationUndoRestoresHandle(t *testing.T) {
	ctx, stack := newTestEnv()

	add := NewAddAnimationCommand(scene.NewAnimation("run"))
	stack.Do(add, ctx)
	h := add.Handle()

	stack.Do(NewRemoveAnimationCommand(h), ctx)
	if ctx.Player.Animations.TryBorrow(h) != nil {
		t.Fatal("Expected animation removed")
	}

	stack.Undo(ctx)
	if a := ctx.Player.Animations.TryBorrow(h); a == nil || a.Name != "run" {
		t.Errorf("Expected original handle valid after undo, got %v", a)
	}
}

// Discarding an undone AddAnimationCommand must release the reserved slot
// for real: the pool ends up empty, and the slot is allocatable again.
func TestTruncationReleasesReservedSlot(t *testing.T) {
	ctx, stack := newTestEnv()

	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)
	h := add.Handle()
	stack.Undo(ctx)

	// Push something else; the add command is truncated away while
	// reverted and must forget its ticket.
	stack.Do(&SelectCommand{}, ctx)

	if got := ctx.Player.Animations.TotalCount(); got != 0 {
		t.Errorf("Expected slot released after truncation, total=%d", got)
	}
	reused := ctx.Player.Animations.Spawn(scene.NewAnimation("other"))
	if reused.Index() != h.Index() {
		t.Errorf("Expected freed slot reused, got index %d want %d", reused.Index(), h.Index())
	}
	if ctx.Player.Animations.TryBorrow(h) != nil {
		t.Error("Expected old handle permanently invalid")
	}
}

// Discarding a RemoveAnimationCommand that was never undone makes the
// removal permanent via its ticket.
func TestClearFinalizesRemoveCommand(t *testing.T) {
	ctx, stack := newTestEnv()

	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)
	stack.Do(NewRemoveAnimationCommand(add.Handle()), ctx)

	stack.Clear(ctx)
	if got := ctx.Player.Animations.TotalCount(); got != 0 {
		t.Errorf("Expected all slots released after clear, total=%d", got)
	}
	// Pool must be clearable now (no outstanding reservations).
	ctx.Player.Animations.Clear()
}

func TestTrackCommands(t *testing.T) {
	ctx, stack := newTestEnv()
	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)
	h := add.Handle()

	node := ctx.Graph.AddNode(scene.NewNode("leg"), pool.None[scene.Node]())
	stack.Do(&AddTrackCommand{Animation: h, Track: scene.NewTrack(node, scene.BindPosition)}, ctx)
	stack.Do(&AddTrackCommand{Animation: h, Track: scene.NewTrack(node, scene.BindScale)}, ctx)

	a := ctx.Player.Animations.Borrow(h)
	if len(a.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(a.Tracks))
	}

	stack.Do(&RemoveTrackCommand{Animation: h, Index: 0}, ctx)
	a = ctx.Player.Animations.Borrow(h)
	if len(a.Tracks) != 1 || a.Tracks[0].Binding != scene.BindScale {
		t.Fatalf("Expected scale track left, got %v", a.Tracks)
	}

	stack.Undo(ctx)
	a = ctx.Player.Animations.Borrow(h)
	if len(a.Tracks) != 2 || a.Tracks[0].Binding != scene.BindPosition {
		t.Errorf("Expected position track restored at index 0, got %v", a.Tracks)
	}
}

func TestPropertySwapCommands(t *testing.T) {
	ctx, stack := newTestEnv()
	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)
	h := add.Handle()

	stack.Do(&SetAnimationSpeedCommand{Animation: h, Value: 2}, ctx)
	if got := ctx.Player.Animations.Borrow(h).Speed; got != 2 {
		t.Fatalf("Expected speed 2, got %v", got)
	}
	stack.Undo(ctx)
	if got := ctx.Player.Animations.Borrow(h).Speed; got != 1 {
		t.Errorf("Expected speed 1 after undo, got %v", got)
	}
	stack.Redo(ctx)
	if got := ctx.Player.Animations.Borrow(h).Speed; got != 2 {
		t.Errorf("Expected speed 2 after redo, got %v", got)
	}

	stack.Do(&SetAnimationNameCommand{Animation: h, Value: "sprint"}, ctx)
	stack.Do(&SetAnimationTimeSliceCommand{Animation: h, Start: 0, End: 3}, ctx)
	stack.Do(&SetLoopingCommand{Animation: h, Value: true}, ctx)
	a := ctx.Player.Animations.Borrow(h)
	if a.Name != "sprint" || a.End != 3 || !a.Looping {
		t.Errorf("Expected properties applied, got %+v", a)
	}
	stack.Undo(ctx)
	stack.Undo(ctx)
	stack.Undo(ctx)
	a = ctx.Player.Animations.Borrow(h)
	if a.Name != "walk" || a.End != 0 || a.Looping {
		t.Errorf("Expected properties reverted, got %+v", a)
	}
}

func TestNodeCommandsUndoRedo(t *testing.T) {
	ctx, stack := newTestEnv()

	add := NewAddNodeCommand(scene.NewNode("arm"), pool.None[scene.Node]())
	stack.Do(add, ctx)
	h := add.Handle()
	if ctx.Graph.Node(h) == nil {
		t.Fatal("Expected node live")
	}

	stack.Undo(ctx)
	if ctx.Graph.Node(h) != nil {
		t.Error("Expected node gone after undo")
	}
	if children := ctx.Graph.Node(ctx.Graph.Root()).Children; len(children) != 0 {
		t.Errorf("Expected root unlinked, children %v", children)
	}

	stack.Redo(ctx)
	if n := ctx.Graph.Node(h); n == nil || n.Name != "arm" {
		t.Errorf("Expected node restored under original handle, got %v", n)
	}
	if n := ctx.Graph.Node(h); n.Parent != ctx.Graph.Root() {
		t.Errorf("Expected relinked to root, parent %v", n.Parent)
	}
}

func TestRemoveNodeCommandRestoresLinkPosition(t *testing.T) {
	ctx, stack := newTestEnv()
	a := ctx.Graph.AddNode(scene.NewNode("a"), pool.None[scene.Node]())
	b := ctx.Graph.AddNode(scene.NewNode("b"), pool.None[scene.Node]())
	c := ctx.Graph.AddNode(scene.NewNode("c"), pool.None[scene.Node]())
	_ = a
	_ = c

	stack.Do(NewRemoveNodeCommand(b), ctx)
	if ctx.Graph.Node(b) != nil {
		t.Fatal("Expected b removed")
	}

	stack.Undo(ctx)
	root := ctx.Graph.Node(ctx.Graph.Root())
	if len(root.Children) != 3 || root.Children[1] != b {
		t.Errorf("Expected b restored at position 1, children %v", root.Children)
	}
}

func TestRemoveSubtreeCommand(t *testing.T) {
	ctx, stack := newTestEnv()
	a := ctx.Graph.AddNode(scene.NewNode("a"), pool.None[scene.Node]())
	b := ctx.Graph.AddNode(scene.NewNode("b"), a)
	c := ctx.Graph.AddNode(scene.NewNode("c"), b)

	stack.Do(RemoveSubtreeCommand(ctx, a), ctx)
	for _, h := range []pool.Handle[scene.Node]{a, b, c} {
		if ctx.Graph.Node(h) != nil {
			t.Errorf("Expected %v removed", h)
		}
	}

	stack.Undo(ctx)
	if ctx.Graph.Node(a) == nil || ctx.Graph.Node(b) == nil || ctx.Graph.Node(c) == nil {
		t.Fatal("Expected whole subtree restored")
	}
	if ctx.Graph.Node(c).Parent != b || ctx.Graph.Node(b).Parent != a {
		t.Error("Expected links restored")
	}
}

func TestCommandsEmitChangeEvents(t *testing.T) {
	ctx, stack := newTestEnv()
	var animEvents, selEvents int
	event.Subscribe(ctx.Bus, func(event.AnimationsChanged) { animEvents++ })
	event.Subscribe(ctx.Bus, func(event.SelectionChanged) { selEvents++ })

	add := NewAddAnimationCommand(scene.NewAnimation("walk"))
	stack.Do(add, ctx)
	stack.Undo(ctx)
	stack.Redo(ctx)

	if animEvents != 3 {
		t.Errorf("Expected 3 AnimationsChanged events, got %d", animEvents)
	}
	if selEvents != 3 {
		t.Errorf("Expected 3 SelectionChanged events, got %d", selEvents)
	}
}

func TestSelectCommandInsignificant(t *testing.T) {
	if (&SelectCommand{}).Significant() {
		t.Error("Expected selection changes to be insignificant")
	}
	if !(&AddTrackCommand{}).Significant() {
		t.Error("Expected track edits to be significant")
	}
}
