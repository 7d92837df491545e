// Package scene holds the domain model the editor mutates: a pooled node
// graph and pooled animations sampling node properties.
package scene

import "github.com/sceneforge/sceneforge/internal/core/pool"

// Vector3 is the transform component type. Enough linear algebra for the
// editor core; rendering math lives elsewhere.
type Vector3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Scale(k float32) Vector3 {
	return Vector3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Lerp interpolates between v and o by t in [0, 1].
func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	return v.Scale(1 - t).Add(o.Scale(t))
}

// One is the identity scale.
var One = Vector3{X: 1, Y: 1, Z: 1}

// Node is a scene-graph node. Parent/child links are handles into the
// graph's node pool; the Graph keeps both sides consistent.
type Node struct {
	Name     string
	Position Vector3
	Rotation Vector3
	Scale    Vector3
	Parent   pool.Handle[Node]
	Children []pool.Handle[Node]
}

// NewNode returns a node with identity transform.
func NewNode(name string) Node {
	return Node{Name: name, Scale: One}
}
