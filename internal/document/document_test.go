package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sceneforge/sceneforge/internal/core/pool"
	"github.com/sceneforge/sceneforge/internal/scene"
)

func buildTestScene() (*scene.Graph, *scene.AnimationPlayer, pool.Handle[scene.Node], pool.Handle[scene.Animation]) {
	g := scene.NewGraph()
	arm := g.AddNode(scene.NewNode("arm"), pool.None[scene.Node]())
	hand := g.AddNode(scene.NewNode("hand"), arm)
	_ = hand

	player := scene.NewAnimationPlayer(g.Root())
	a := scene.NewAnimation("wave")
	a.End = 2
	a.Looping = true
	track := scene.NewTrack(arm, scene.BindRotation)
	track.AddKeyframe(scene.Keyframe{Time: 0, Value: scene.Vector3{}})
	track.AddKeyframe(scene.Keyframe{Time: 2, Value: scene.Vector3{Z: 90}})
	a.Tracks = append(a.Tracks, track)
	anim := player.Animations.Spawn(a)
	return g, player, arm, anim
}

func TestRoundTripPreservesHandles(t *testing.T) {
	g, player, arm, anim := buildTestScene()

	// Introduce pool history so generations are not trivially 1: free a
	// node and respawn into the same slot.
	tmp := g.AddNode(scene.NewNode("tmp"), pool.None[scene.Node]())
	g.RemoveNode(tmp)
	extra := g.AddNode(scene.NewNode("extra"), pool.None[scene.Node]())
	if extra.Generation() == 1 {
		t.Fatal("Expected reused slot with bumped generation in test setup")
	}

	doc := New(g, player)
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != doc.ID {
		t.Errorf("Expected ID %q preserved, got %q", doc.ID, loaded.ID)
	}

	g2, player2, err := loaded.Restore()
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	// The old handles must be valid in the rebuilt pools.
	if n := g2.Node(arm); n == nil || n.Name != "arm" {
		t.Errorf("Expected arm handle live in restored graph, got %v", n)
	}
	if n := g2.Node(extra); n == nil || n.Name != "extra" {
		t.Errorf("Expected extra handle live with its generation, got %v", n)
	}
	a := player2.Animations.TryBorrow(anim)
	if a == nil || a.Name != "wave" || !a.Looping || a.End != 2 {
		t.Fatalf("Expected wave animation restored, got %+v", a)
	}
	if len(a.Tracks) != 1 || a.Tracks[0].Target != arm {
		t.Fatalf("Expected track targeting arm, got %+v", a.Tracks)
	}
	if got := a.Tracks[0].Sample(1).Z; got != 45 {
		t.Errorf("Expected restored curve to sample 45 at t=1, got %v", got)
	}
	if g2.NodeCount() != g.NodeCount() {
		t.Errorf("Expected %d nodes, got %d", g.NodeCount(), g2.NodeCount())
	}
}

func TestDigestDetectsChanges(t *testing.T) {
	g, player, _, anim := buildTestScene()
	doc := New(g, player)
	data1, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data2, _ := doc.Encode()
	if Digest(data1) != Digest(data2) {
		t.Error("Expected stable digest for unchanged document")
	}

	player.Animations.Borrow(anim).Speed = 3
	doc.Capture(g, player)
	data3, _ := doc.Encode()
	if Digest(data1) == Digest(data3) {
		t.Error("Expected digest to change with content")
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("version: 99\nid: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected version error")
	}
}

func TestRestoreRejectsDanglingRoot(t *testing.T) {
	d := &Document{Version: FormatVersion, ID: "x", Root: HandleRef{Index: 5, Generation: 2}}
	if _, _, err := d.Restore(); err == nil {
		t.Error("Expected error for dangling root handle")
	}
}
