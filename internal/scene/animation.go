package scene

import (
	"sort"

	"github.com/sceneforge/sceneforge/internal/core/pool"
)

// Binding names the node property a track animates.
type Binding uint8

const (
	BindPosition Binding = iota
	BindRotation
	BindScale
)

func (b Binding) String() string {
	switch b {
	case BindPosition:
		return "position"
	case BindRotation:
		return "rotation"
	case BindScale:
		return "scale"
	}
	return "unknown"
}

// ParseBinding is the inverse of String; ok is false for unknown names.
func ParseBinding(s string) (Binding, bool) {
	switch s {
	case "position":
		return BindPosition, true
	case "rotation":
		return BindRotation, true
	case "scale":
		return BindScale, true
	}
	return 0, false
}

// Keyframe is one sample on a track curve.
type Keyframe struct {
	Time  float32
	Value Vector3
}

// Track animates one property of one target node through a keyframe curve.
type Track struct {
	Target    pool.Handle[Node]
	Binding   Binding
	Enabled   bool
	Keyframes []Keyframe
}

func NewTrack(target pool.Handle[Node], binding Binding) Track {
	return Track{Target: target, Binding: binding, Enabled: true}
}

// AddKeyframe inserts the keyframe keeping the curve sorted by time.
func (t *Track) AddKeyframe(kf Keyframe) {
	at := sort.Search(len(t.Keyframes), func(i int) bool {
		return t.Keyframes[i].Time > kf.Time
	})
	t.Keyframes = append(t.Keyframes, Keyframe{})
	copy(t.Keyframes[at+1:], t.Keyframes[at:])
	t.Keyframes[at] = kf
}

// Sample evaluates the curve at the given time with linear interpolation,
// clamping outside the keyframe range. An empty track samples to zero.
func (t *Track) Sample(time float32) Vector3 {
	n := len(t.Keyframes)
	if n == 0 {
		return Vector3{}
	}
	if time <= t.Keyframes[0].Time {
		return t.Keyframes[0].Value
	}
	if time >= t.Keyframes[n-1].Time {
		return t.Keyframes[n-1].Value
	}
	hi := sort.Search(n, func(i int) bool {
		return t.Keyframes[i].Time >= time
	})
	lo := hi - 1
	a, b := t.Keyframes[lo], t.Keyframes[hi]
	span := b.Time - a.Time
	if span <= 0 {
		return a.Value
	}
	return a.Value.Lerp(b.Value, (time-a.Time)/span)
}

// Animation is a named set of tracks played over a time slice. Animations
// live in an AnimationPlayer's pool; handles to them are what commands and
// selections carry around.
type Animation struct {
	Name    string
	Tracks  []Track
	Start   float32
	End     float32
	Speed   float32
	Looping bool
	Enabled bool

	timePos float32
}

func NewAnimation(name string) Animation {
	return Animation{Name: name, Speed: 1, Enabled: true}
}

func (a *Animation) TimePosition() float32 { return a.timePos }

// SetTimePosition clamps into the animation's time slice.
func (a *Animation) SetTimePosition(t float32) {
	if t < a.Start {
		t = a.Start
	}
	if t > a.End {
		t = a.End
	}
	a.timePos = t
}

// Advance moves the playhead by dt (scaled by Speed), wrapping when looping
// and clamping at the end otherwise. Disabled animations do not move.
func (a *Animation) Advance(dt float32) {
	if !a.Enabled {
		return
	}
	length := a.End - a.Start
	if length <= 0 {
		a.timePos = a.Start
		return
	}
	t := a.timePos + dt*a.Speed
	if a.Looping {
		for t > a.End {
			t -= length
		}
		for t < a.Start {
			t += length
		}
	} else {
		if t > a.End {
			t = a.End
		}
		if t < a.Start {
			t = a.Start
		}
	}
	a.timePos = t
}

// Pose applies every enabled track at the current playhead to its target
// node in the graph. Tracks with stale targets are skipped.
func (a *Animation) Pose(g *Graph) {
	for i := range a.Tracks {
		track := &a.Tracks[i]
		if !track.Enabled {
			continue
		}
		node := g.Node(track.Target)
		if node == nil {
			continue
		}
		value := track.Sample(a.timePos)
		switch track.Binding {
		case BindPosition:
			node.Position = value
		case BindRotation:
			node.Rotation = value
		case BindScale:
			node.Scale = value
		}
	}
}

// AnimationPlayer owns the animation container for one scene node.
type AnimationPlayer struct {
	Node       pool.Handle[Node]
	Animations *pool.Pool[Animation]
}

func NewAnimationPlayer(node pool.Handle[Node]) *AnimationPlayer {
	return &AnimationPlayer{Node: node, Animations: pool.New[Animation]()}
}

// Update advances and poses every enabled animation.
func (p *AnimationPlayer) Update(g *Graph, dt float32) {
	p.Animations.ForEach(func(a *Animation) {
		a.Advance(dt)
		a.Pose(g)
	})
}
