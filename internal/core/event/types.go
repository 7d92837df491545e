package event

// Editor change notifications. Payloads stay index-based (not handle-typed)
// so this leaf package does not depend on the domain packages that emit.

// AnimationsChanged fires when an animation was added to or removed from a
// player's container.
type AnimationsChanged struct {
	AnimationIndex uint32
}

// AnimationModified fires when a property of an existing animation changed.
type AnimationModified struct {
	AnimationIndex uint32
}

// TracksChanged fires when tracks were added to or removed from an animation.
type TracksChanged struct {
	AnimationIndex uint32
}

// GraphChanged fires when scene nodes were added, removed or relinked.
type GraphChanged struct{}

// SelectionChanged fires when the edited selection moved.
type SelectionChanged struct{}
