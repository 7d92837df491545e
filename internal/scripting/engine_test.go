package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sceneforge/sceneforge/internal/editor"
	"github.com/sceneforge/sceneforge/internal/scene"
)

func newTestEngine() (*Engine, *editor.EditContext, *editor.Stack) {
	ctx := editor.NewEditContext(zap.NewNop())
	stack := editor.NewStack(0, zap.NewNop())
	return NewEngine(stack, ctx, zap.NewNop()), ctx, stack
}

func TestMacroBuildsAnimation(t *testing.T) {
	e, ctx, _ := newTestEngine()
	defer e.Close()

	err := e.RunString(`
		local arm = forge.add_node("arm")
		local anim = forge.add_animation("wave")
		forge.add_track(anim, arm, "rotation")
		forge.add_keyframe(anim, 0, 0.0, 0, 0, 0)
		forge.add_keyframe(anim, 0, 2.0, 0, 0, 90)
		forge.set_speed(anim, 2.0)
		forge.set_looping(anim, true)
	`)
	if err != nil {
		t.Fatalf("macro failed: %v", err)
	}

	if ctx.Player.Animations.AliveCount() != 1 {
		t.Fatalf("Expected 1 animation, got %d", ctx.Player.Animations.AliveCount())
	}
	h := ctx.Graph.FindByName("arm")
	if h.IsNone() {
		t.Fatal("Expected arm node created")
	}
	ctx.Player.Animations.ForEach(func(a *scene.Animation) {
		if a.Name != "wave" {
			t.Errorf("Expected animation named wave, got %q", a.Name)
		}
		if a.Speed != 2.0 || !a.Looping {
			t.Errorf("Expected speed 2 looping, got %v %v", a.Speed, a.Looping)
		}
		if len(a.Tracks) != 1 || len(a.Tracks[0].Keyframes) != 2 {
			t.Errorf("Expected 1 track with 2 keyframes, got %+v", a.Tracks)
		}
	})
}

func TestMacroUndoRedo(t *testing.T) {
	e, ctx, stack := newTestEngine()
	defer e.Close()

	err := e.RunString(`
		forge.add_animation("one")
		forge.add_animation("two")
		forge.undo()
	`)
	if err != nil {
		t.Fatalf("macro failed: %v", err)
	}
	if got := ctx.Player.Animations.AliveCount(); got != 1 {
		t.Fatalf("Expected 1 animation after undo, got %d", got)
	}

	if err := e.RunString(`forge.redo()`); err != nil {
		t.Fatalf("redo macro failed: %v", err)
	}
	if got := ctx.Player.Animations.AliveCount(); got != 2 {
		t.Errorf("Expected 2 animations after redo, got %d", got)
	}
	if stack.Top() != 1 {
		t.Errorf("Expected cursor at 1, got %d", stack.Top())
	}
}

func TestMacroStaleHandleRaisesError(t *testing.T) {
	e, _, _ := newTestEngine()
	defer e.Close()

	err := e.RunString(`
		local anim = forge.add_animation("gone")
		forge.remove_animation(anim)
		forge.remove_animation(anim)
	`)
	if err == nil {
		t.Error("Expected error removing through stale handle")
	}
}

func TestMacroAnimationsListing(t *testing.T) {
	e, _, _ := newTestEngine()
	defer e.Close()

	err := e.RunString(`
		forge.add_animation("idle")
		forge.add_animation("walk")
		local names = forge.animations()
		assert(#names == 2, "expected 2 animations")
		assert(names[1] == "idle", "expected idle first")
	`)
	if err != nil {
		t.Fatalf("macro failed: %v", err)
	}
}

func TestRunDir(t *testing.T) {
	e, ctx, _ := newTestEngine()
	defer e.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "01_setup.lua"), []byte(`forge.add_animation("a")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "02_more.lua"), []byte(`forge.add_animation("b")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not lua"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.RunDir(dir); err != nil {
		t.Fatalf("RunDir failed: %v", err)
	}
	if got := ctx.Player.Animations.AliveCount(); got != 2 {
		t.Errorf("Expected 2 animations, got %d", got)
	}

	if err := e.RunDir(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("Expected missing dir to be skipped, got %v", err)
	}
}
