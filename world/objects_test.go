package world

import "testing"

func TestCollectPickups_WithinRadius(t *testing.T) {
	objects := []*WorldObject{
		{ID: "pickup_1", Type: ObjectPickup, X: 400, Y: 400, Active: true},
		{ID: "pickup_2", Type: ObjectPickup, X: 1000, Y: 1000, Active: true},
	}

	picked := CollectPickups(objects, 410, 400, 50)
	if len(picked) != 1 || picked[0] != "pickup_1" {
		t.Fatalf("expected [pickup_1], got %v", picked)
	}
	if objects[0].Active {
		t.Error("picked object should be inactive")
	}
	if !objects[1].Active {
		t.Error("distant object should remain active")
	}
}

func TestCollectPickups_OneShot(t *testing.T) {
	objects := []*WorldObject{
		{ID: "pickup_1", Type: ObjectPickup, X: 400, Y: 400, Active: true},
	}

	first := CollectPickups(objects, 400, 400, 50)
	second := CollectPickups(objects, 400, 400, 50)

	if len(first) != 1 {
		t.Fatalf("expected one pickup on first pass, got %v", first)
	}
	if len(second) != 0 {
		t.Errorf("inactive pickup reported again: %v", second)
	}
	if objects[0].Active {
		t.Error("active flag transitioned back to true")
	}
}

func TestCollectPickups_IgnoresNonPickups(t *testing.T) {
	objects := []*WorldObject{
		{ID: "npc_1", Type: ObjectNPC, X: 400, Y: 400, Active: true},
		{ID: "portal_1", Type: ObjectPortal, X: 400, Y: 400, Active: true},
	}

	if picked := CollectPickups(objects, 400, 400, 50); len(picked) != 0 {
		t.Errorf("npc/portal must not be collectable, got %v", picked)
	}
	if !objects[0].Active || !objects[1].Active {
		t.Error("non-pickup objects must stay active")
	}
}

func TestCollectPickups_ExactRadiusIsOutside(t *testing.T) {
	objects := []*WorldObject{
		{ID: "pickup_1", Type: ObjectPickup, X: 400, Y: 400, Active: true},
	}

	// Collision requires distance strictly below the radius.
	if picked := CollectPickups(objects, 450, 400, 50); len(picked) != 0 {
		t.Errorf("distance == radius should not collide, got %v", picked)
	}
}
