// Package document persists an edited scene as a versioned YAML file.
// Handles are stored as plain index/generation pairs and pools are rebuilt
// slot-exact on load, so handles embedded in nodes, tracks and selections
// stay valid across save/load.
package document

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

// FormatVersion guards against loading documents written by incompatible
// future formats.
const FormatVersion = 1

// HandleRef is the serialized form of a pool handle.
type HandleRef struct {
	Index      uint32 `yaml:"index"`
	Generation uint32 `yaml:"generation"`
}

func ref[T any](h pool.Handle[T]) HandleRef {
	return HandleRef{Index: h.Index(), Generation: h.Generation()}
}

func (r HandleRef) nodeHandle() pool.Handle[scene.Node] {
	return pool.NewHandle[scene.Node](r.Index, r.Generation)
}

type NodeRecord struct {
	Handle   HandleRef     `yaml:"handle"`
	Name     string        `yaml:"name"`
	Position scene.Vector3 `yaml:"position"`
	Rotation scene.Vector3 `yaml:"rotation"`
	Scale    scene.Vector3 `yaml:"scale"`
	Parent   HandleRef     `yaml:"parent"`
	Children []HandleRef   `yaml:"children,omitempty"`
}

type KeyframeRecord struct {
	Time  float32       `yaml:"time"`
	Value scene.Vector3 `yaml:"value"`
}

type TrackRecord struct {
	Target    HandleRef        `yaml:"target"`
	Binding   string           `yaml:"binding"`
	Enabled   bool             `yaml:"enabled"`
	Keyframes []KeyframeRecord `yaml:"keyframes,omitempty"`
}

type AnimationRecord struct {
	Handle  HandleRef     `yaml:"handle"`
	Name    string        `yaml:"name"`
	Start   float32       `yaml:"start"`
	End     float32       `yaml:"end"`
	Speed   float32       `yaml:"speed"`
	Looping bool          `yaml:"looping"`
	Enabled bool          `yaml:"enabled"`
	Tracks  []TrackRecord `yaml:"tracks,omitempty"`
}

type PlayerRecord struct {
	Node       HandleRef         `yaml:"node"`
	Animations []AnimationRecord `yaml:"animations,omitempty"`
}

// Document is the serialized scene: identity, the node graph, and the
// animation player content.
type Document struct {
	Version int          `yaml:"version"`
	ID      string       `yaml:"id"`
	Root    HandleRef    `yaml:"root"`
	Nodes   []NodeRecord `yaml:"nodes,omitempty"`
	Player  PlayerRecord `yaml:"player"`
}

// New captures the current state of the graph and player into a fresh
// document with a new identity.
func New(g *scene.Graph, player *scene.AnimationPlayer) *Document {
	d := &Document{
		Version: FormatVersion,
		ID:      uuid.NewString(),
	}
	d.Capture(g, player)
	return d
}

// Capture refreshes the document's records from live state, keeping its
// identity.
func (d *Document) Capture(g *scene.Graph, player *scene.AnimationPlayer) {
	d.Version = FormatVersion
	d.Root = ref(g.Root())
	d.Nodes = d.Nodes[:0]
	g.Nodes().Pairs(func(h pool.Handle[scene.Node], n *scene.Node) {
		rec := NodeRecord{
			Handle:   ref(h),
			Name:     n.Name,
			Position: n.Position,
			Rotation: n.Rotation,
			Scale:    n.Scale,
			Parent:   ref(n.Parent),
		}
		for _, c := range n.Children {
			rec.Children = append(rec.Children, ref(c))
		}
		d.Nodes = append(d.Nodes, rec)
	})

	d.Player = PlayerRecord{Node: ref(player.Node)}
	player.Animations.Pairs(func(h pool.Handle[scene.Animation], a *scene.Animation) {
		rec := AnimationRecord{
			Handle:  ref(h),
			Name:    a.Name,
			Start:   a.Start,
			End:     a.End,
			Speed:   a.Speed,
			Looping: a.Looping,
			Enabled: a.Enabled,
		}
		for _, track := range a.Tracks {
			tr := TrackRecord{
				Target:  ref(track.Target),
				Binding: track.Binding.String(),
				Enabled: track.Enabled,
			}
			for _, kf := range track.Keyframes {
				tr.Keyframes = append(tr.Keyframes, KeyframeRecord{Time: kf.Time, Value: kf.Value})
			}
			rec.Tracks = append(rec.Tracks, tr)
		}
		d.Player.Animations = append(d.Player.Animations, rec)
	})
}

// Restore rebuilds a graph and player from the document's records. Pools are
// reconstructed slot-exact via SpawnAtHandle, so every persisted handle is
// valid in the rebuilt pools.
func (d *Document) Restore() (*scene.Graph, *scene.AnimationPlayer, error) {
	nodes := pool.New[scene.Node]()
	for _, rec := range d.Nodes {
		node := scene.Node{
			Name:     rec.Name,
			Position: rec.Position,
			Rotation: rec.Rotation,
			Scale:    rec.Scale,
			Parent:   rec.Parent.nodeHandle(),
		}
		for _, c := range rec.Children {
			node.Children = append(node.Children, c.nodeHandle())
		}
		if err := nodes.SpawnAtHandle(rec.Handle.nodeHandle(), node); err != nil {
			return nil, nil, fmt.Errorf("restore node %q: %w", rec.Name, err)
		}
	}
	root := d.Root.nodeHandle()
	if !nodes.IsValid(root) {
		return nil, nil, fmt.Errorf("restore: root handle %v is not live", root)
	}
	g := scene.LoadGraph(nodes, root)

	player := scene.NewAnimationPlayer(d.Player.Node.nodeHandle())
	for _, rec := range d.Player.Animations {
		a := scene.Animation{
			Name:    rec.Name,
			Start:   rec.Start,
			End:     rec.End,
			Speed:   rec.Speed,
			Looping: rec.Looping,
			Enabled: rec.Enabled,
		}
		for _, tr := range rec.Tracks {
			binding, ok := scene.ParseBinding(tr.Binding)
			if !ok {
				return nil, nil, fmt.Errorf("restore animation %q: unknown binding %q", rec.Name, tr.Binding)
			}
			track := scene.Track{
				Target:  tr.Target.nodeHandle(),
				Binding: binding,
				Enabled: tr.Enabled,
			}
			for _, kf := range tr.Keyframes {
				track.Keyframes = append(track.Keyframes, scene.Keyframe{Time: kf.Time, Value: kf.Value})
			}
			a.Tracks = append(a.Tracks, track)
		}
		handle := pool.NewHandle[scene.Animation](rec.Handle.Index, rec.Handle.Generation)
		if err := player.Animations.SpawnAtHandle(handle, a); err != nil {
			return nil, nil, fmt.Errorf("restore animation %q: %w", rec.Name, err)
		}
	}
	return g, player, nil
}

// Encode serializes the document to YAML.
func (d *Document) Encode() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Digest returns the xxhash of the serialized form. Comparing digests is how
// the editor decides whether an autosave actually needs to write.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

// Load reads a document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	if d.Version != FormatVersion {
		return nil, fmt.Errorf("document %s: unsupported version %d", path, d.Version)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return &d, nil
}
