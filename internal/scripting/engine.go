// Package scripting runs editor macros: Lua scripts that build and dispatch
// commands through the undo stack. Everything a macro does is undoable,
// because it goes through the exact same command path as interactive edits.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/editor"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// Engine wraps a single gopher-lua VM bound to one edit context and command
// stack. Single-goroutine access only (editor loop).
type Engine struct {
	vm    *lua.LState
	stack *editor.Stack
	ctx   *editor.EditContext
	log   *zap.Logger
}

// NewEngine creates a macro engine and registers the `forge` API table.
func NewEngine(stack *editor.Stack, ctx *editor.EditContext, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, stack: stack, ctx: ctx, log: log}
	e.register()
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// RunFile executes one macro file.
func (e *Engine) RunFile(path string) error {
	e.log.Info("running macro", zap.String("file", path))
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("macro %s: %w", path, err)
	}
	return nil
}

// RunString executes macro source directly. Used by tests and the console.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("macro: %w", err)
	}
	return nil
}

// RunDir executes every .lua file in the directory in name order. A missing
// directory is not an error.
func (e *Engine) RunDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := e.RunFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ── Lua API ────────────────────────────────────────────────────────

func (e *Engine) register() {
	api := e.vm.NewTable()
	fns := map[string]lua.LGFunction{
		"add_animation":    e.luaAddAnimation,
		"remove_animation": e.luaRemoveAnimation,
		"set_name":         e.luaSetName,
		"set_speed":        e.luaSetSpeed,
		"set_time_slice":   e.luaSetTimeSlice,
		"set_looping":      e.luaSetLooping,
		"add_track":        e.luaAddTrack,
		"remove_track":     e.luaRemoveTrack,
		"add_keyframe":     e.luaAddKeyframe,
		"add_node":         e.luaAddNode,
		"remove_node":      e.luaRemoveNode,
		"find_node":        e.luaFindNode,
		"animations":       e.luaAnimations,
		"undo":             e.luaUndo,
		"redo":             e.luaRedo,
	}
	for name, fn := range fns {
		api.RawSetString(name, e.vm.NewFunction(fn))
	}
	e.vm.SetGlobal("forge", api)
}

// handleToLua converts a handle into its Lua table form {index, generation}.
func handleToLua[T any](vm *lua.LState, h pool.Handle[T]) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("index", lua.LNumber(h.Index()))
	t.RawSetString("generation", lua.LNumber(h.Generation()))
	return t
}

func luaToHandle[T any](vm *lua.LState, at int) pool.Handle[T] {
	t := vm.CheckTable(at)
	index := uint32(lua.LVAsNumber(t.RawGetString("index")))
	generation := uint32(lua.LVAsNumber(t.RawGetString("generation")))
	return pool.NewHandle[T](index, generation)
}

// forge.add_animation(name) -> handle
func (e *Engine) luaAddAnimation(vm *lua.LState) int {
	name := vm.CheckString(1)
	cmd := editor.NewAddAnimationCommand(scene.NewAnimation(name))
	e.stack.Do(cmd, e.ctx)
	vm.Push(handleToLua(vm, cmd.Handle()))
	return 1
}

// forge.remove_animation(handle)
func (e *Engine) luaRemoveAnimation(vm *lua.LState) int {
	h := luaToHandle[scene.Animation](vm, 1)
	if !e.ctx.Player.Animations.IsValid(h) {
		vm.RaiseError("remove_animation: stale animation handle %v", h)
		return 0
	}
	e.stack.Do(editor.NewRemoveAnimationCommand(h), e.ctx)
	return 0
}

// forge.set_name(handle, name)
func (e *Engine) luaSetName(vm *lua.LState) int {
	h := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.SetAnimationNameCommand{Animation: h, Value: vm.CheckString(2)}, e.ctx)
	return 0
}

// forge.set_speed(handle, speed)
func (e *Engine) luaSetSpeed(vm *lua.LState) int {
	h := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.SetAnimationSpeedCommand{Animation: h, Value: float32(vm.CheckNumber(2))}, e.ctx)
	return 0
}

// forge.set_time_slice(handle, start, end)
func (e *Engine) luaSetTimeSlice(vm *lua.LState) int {
	h := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.SetAnimationTimeSliceCommand{
		Animation: h,
		Start:     float32(vm.CheckNumber(2)),
		End:       float32(vm.CheckNumber(3)),
	}, e.ctx)
	return 0
}

// forge.set_looping(handle, looping)
func (e *Engine) luaSetLooping(vm *lua.LState) int {
	h := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.SetLoopingCommand{Animation: h, Value: vm.CheckBool(2)}, e.ctx)
	return 0
}

// forge.add_track(anim_handle, node_handle, binding)
func (e *Engine) luaAddTrack(vm *lua.LState) int {
	anim := luaToHandle[scene.Animation](vm, 1)
	node := luaToHandle[scene.Node](vm, 2)
	binding, ok := scene.ParseBinding(vm.CheckString(3))
	if !ok {
		vm.RaiseError("add_track: unknown binding %q", vm.CheckString(3))
		return 0
	}
	e.stack.Do(&editor.AddTrackCommand{Animation: anim, Track: scene.NewTrack(node, binding)}, e.ctx)
	return 0
}

// forge.remove_track(anim_handle, index) -- zero-based
func (e *Engine) luaRemoveTrack(vm *lua.LState) int {
	anim := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.RemoveTrackCommand{Animation: anim, Index: vm.CheckInt(2)}, e.ctx)
	return 0
}

// forge.add_keyframe(anim_handle, track_index, time, x, y, z)
func (e *Engine) luaAddKeyframe(vm *lua.LState) int {
	anim := luaToHandle[scene.Animation](vm, 1)
	e.stack.Do(&editor.AddKeyframeCommand{
		Animation: anim,
		Index:     vm.CheckInt(2),
		Keyframe: scene.Keyframe{
			Time: float32(vm.CheckNumber(3)),
			Value: scene.Vector3{
				X: float32(vm.CheckNumber(4)),
				Y: float32(vm.CheckNumber(5)),
				Z: float32(vm.CheckNumber(6)),
			},
		},
	}, e.ctx)
	return 0
}

// forge.add_node(name [, parent_handle]) -> handle
func (e *Engine) luaAddNode(vm *lua.LState) int {
	name := vm.CheckString(1)
	parent := pool.None[scene.Node]()
	if vm.GetTop() >= 2 {
		parent = luaToHandle[scene.Node](vm, 2)
	}
	cmd := editor.NewAddNodeCommand(scene.NewNode(name), parent)
	e.stack.Do(cmd, e.ctx)
	vm.Push(handleToLua(vm, cmd.Handle()))
	return 1
}

// forge.remove_node(handle) -- removes the whole subtree
func (e *Engine) luaRemoveNode(vm *lua.LState) int {
	h := luaToHandle[scene.Node](vm, 1)
	if e.ctx.Graph.Node(h) == nil {
		vm.RaiseError("remove_node: stale node handle %v", h)
		return 0
	}
	e.stack.Do(editor.RemoveSubtreeCommand(e.ctx, h), e.ctx)
	return 0
}

// forge.find_node(name) -> handle or nil
func (e *Engine) luaFindNode(vm *lua.LState) int {
	h := e.ctx.Graph.FindByName(vm.CheckString(1))
	if h.IsNone() {
		vm.Push(lua.LNil)
	} else {
		vm.Push(handleToLua(vm, h))
	}
	return 1
}

// forge.animations() -> { name, ... } in slot order
func (e *Engine) luaAnimations(vm *lua.LState) int {
	t := vm.NewTable()
	e.ctx.Player.Animations.ForEach(func(a *scene.Animation) {
		t.Append(lua.LString(a.Name))
	})
	vm.Push(t)
	return 1
}

// forge.undo([n])
func (e *Engine) luaUndo(vm *lua.LState) int {
	n := vm.OptInt(1, 1)
	for i := 0; i < n; i++ {
		e.stack.Undo(e.ctx)
	}
	return 0
}

// forge.redo([n])
func (e *Engine) luaRedo(vm *lua.LState) int {
	n := vm.OptInt(1, 1)
	for i := 0; i < n; i++ {
		e.stack.Redo(e.ctx)
	}
	return 0
}
