package editor

import (
	"fmt"

	"github.com/sceneforge/sceneforge/internal/core/command"
	"github.com/sceneforge/sceneforge/internal/core/event"
	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// Tracks live in a plain slice inside their animation, so track commands are
// reversible insert/remove at an index rather than pool protocol.

// AddTrackCommand appends a track to an animation.
type AddTrackCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Track     scene.Track
}

func (c *AddTrackCommand) Name(*EditContext) string { return "Add Track" }

func (c *AddTrackCommand) Execute(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Tracks = append(a.Tracks, c.Track)
	c.Track = scene.Track{}
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

func (c *AddTrackCommand) Revert(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	if len(a.Tracks) == 0 {
		panic("AddTrackCommand: revert with no tracks")
	}
	c.Track = a.Tracks[len(a.Tracks)-1]
	a.Tracks = a.Tracks[:len(a.Tracks)-1]
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

// RemoveTrackCommand removes the track at a fixed index, restoring it at the
// same position on revert so later track indices stay stable across
// undo/redo.
type RemoveTrackCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Index     int

	track scene.Track
	taken bool
}

func (c *RemoveTrackCommand) Name(*EditContext) string { return "Remove Track" }

func (c *RemoveTrackCommand) Execute(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	if c.Index < 0 || c.Index >= len(a.Tracks) {
		panic(fmt.Sprintf("RemoveTrackCommand: index %d out of range (len %d)", c.Index, len(a.Tracks)))
	}
	c.track = a.Tracks[c.Index]
	c.taken = true
	a.Tracks = append(a.Tracks[:c.Index], a.Tracks[c.Index+1:]...)
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

func (c *RemoveTrackCommand) Revert(ctx *EditContext) {
	if !c.taken {
		panic("RemoveTrackCommand: revert before execute")
	}
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Tracks = append(a.Tracks, scene.Track{})
	copy(a.Tracks[c.Index+1:], a.Tracks[c.Index:])
	a.Tracks[c.Index] = c.track
	c.track = scene.Track{}
	c.taken = false
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

// SetTrackEnabledCommand flips a track's enabled flag with the swap pattern.
type SetTrackEnabledCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Index     int
	Value     bool
}

func (c *SetTrackEnabledCommand) Name(*EditContext) string { return "Set Track Enabled" }

func (c *SetTrackEnabledCommand) swap(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	track := &a.Tracks[c.Index]
	track.Enabled, c.Value = c.Value, track.Enabled
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

func (c *SetTrackEnabledCommand) Execute(ctx *EditContext) { c.swap(ctx) }
func (c *SetTrackEnabledCommand) Revert(ctx *EditContext)  { c.swap(ctx) }

// AddKeyframeCommand inserts a keyframe into a track curve. Revert removes
// the keyframe at the time it was inserted.
type AddKeyframeCommand struct {
	command.Base[*EditContext]
	Animation pool.Handle[scene.Animation]
	Index     int
	Keyframe  scene.Keyframe
}

func (c *AddKeyframeCommand) Name(*EditContext) string { return "Add Keyframe" }

func (c *AddKeyframeCommand) Execute(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	a.Tracks[c.Index].AddKeyframe(c.Keyframe)
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}

func (c *AddKeyframeCommand) Revert(ctx *EditContext) {
	a := ctx.Player.Animations.Borrow(c.Animation)
	track := &a.Tracks[c.Index]
	for i, kf := range track.Keyframes {
		if kf.Time == c.Keyframe.Time && kf.Value == c.Keyframe.Value {
			track.Keyframes = append(track.Keyframes[:i], track.Keyframes[i+1:]...)
			break
		}
	}
	event.Emit(ctx.Bus, event.TracksChanged{AnimationIndex: c.Animation.Index()})
}
