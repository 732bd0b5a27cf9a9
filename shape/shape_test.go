package shape

import (
	"testing"

	"github.com/voskan/mjsvm/value"
)

func TestTransitionIsMonotonicAndInterned(t *testing.T) {
	m := NewManager()
	keyA := value.GlobalIndex(0)
	keyB := value.GlobalIndex(1)

	s1 := m.EmptyShape.Transition(keyA)
	s2 := m.EmptyShape.Transition(keyA)
	if s1 != s2 {
		t.Fatal("adding the same key to the same base shape must reach the same successor shape")
	}

	s3 := s1.Transition(keyB)
	if idx, ok := s3.Find(keyA); !ok || idx != 0 {
		t.Fatalf("expected keyA at slot 0, got (%d, %v)", idx, ok)
	}
	if idx, ok := s3.Find(keyB); !ok || idx != 1 {
		t.Fatalf("expected keyB at slot 1, got (%d, %v)", idx, ok)
	}
}

func TestTransitionSafetyForksOnBranch(t *testing.T) {
	m := NewManager()
	keyA := value.GlobalIndex(0)
	base := m.EmptyShape.Transition(keyA)

	keyB := value.GlobalIndex(1)
	keyC := value.GlobalIndex(2)
	branch1 := base.Transition(keyB)
	branch2 := base.Transition(keyC)

	if _, ok := branch1.Find(keyC); ok {
		t.Fatal("branch1 must not see branch2's property")
	}
	if _, ok := branch2.Find(keyB); ok {
		t.Fatal("branch2 must not see branch1's property")
	}
	if _, ok := branch1.Find(keyA); !ok {
		t.Fatal("branch1 must still see the shared base property")
	}
}

func TestFindOnlyScansOwnPropertySize(t *testing.T) {
	m := NewManager()
	keyA := value.GlobalIndex(0)
	keyB := value.GlobalIndex(1)
	s1 := m.EmptyShape.Transition(keyA)
	s2 := s1.Transition(keyB)

	if _, ok := s1.Find(keyB); ok {
		t.Fatal("s1 (property_size=1) must not find a key added by its child")
	}
	if _, ok := s2.Find(keyB); !ok {
		t.Fatal("s2 should find its own added key")
	}
}

func TestEmptyShapeIsRoot(t *testing.T) {
	m := NewManager()
	if !m.EmptyShape.IsRoot() {
		t.Fatal("EmptyShape must be the root")
	}
	if _, ok := m.EmptyShape.AddedKey(); ok {
		t.Fatal("root shape has no added key")
	}
}

func TestShapeRefcountReleasesLeaf(t *testing.T) {
	m := NewManager()
	key := value.GlobalIndex(0)
	child := m.EmptyShape.Transition(key)
	child.Retain()

	if released := child.Release(); !released {
		t.Fatal("releasing the last reference to a childless shape should report released")
	}
	if _, ok := m.EmptyShape.Transitions[key]; ok {
		t.Fatal("released leaf shape should be pruned from its parent's transition table")
	}
}
