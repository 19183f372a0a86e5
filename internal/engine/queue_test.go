package engine

import (
	"testing"

	"voxeld/internal/chunk"
)

func TestPosQueueDeduplicates(t *testing.T) {
	q := newPosQueue()
	if !q.Insert(chunk.Pos{1, 0, 0}) {
		t.Fatal("first insert rejected")
	}
	if q.Insert(chunk.Pos{1, 0, 0}) {
		t.Fatal("duplicate insert accepted")
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d", q.Len())
	}
}

func TestPosQueuePreservesInsertionOrder(t *testing.T) {
	q := newPosQueue()
	positions := []chunk.Pos{{3, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	for _, p := range positions {
		q.Insert(p)
	}
	for _, want := range positions {
		got, ok := q.PopFront()
		if !ok || got != want {
			t.Fatalf("popped %v, want %v", got, want)
		}
	}
	if _, ok := q.PopFront(); ok {
		t.Fatal("pop from empty queue succeeded")
	}
}

func TestPosQueueSortAndRemove(t *testing.T) {
	q := newPosQueue()
	for _, p := range []chunk.Pos{{5, 0, 0}, {1, 0, 0}, {3, 0, 0}} {
		q.Insert(p)
	}
	q.Sort(func(p chunk.Pos) int64 { return int64(p.X()) })

	q.Remove(chunk.Pos{3, 0, 0})
	if q.Contains(chunk.Pos{3, 0, 0}) {
		t.Fatal("removed position still present")
	}

	first, _ := q.PopFront()
	second, _ := q.PopFront()
	if first != (chunk.Pos{1, 0, 0}) || second != (chunk.Pos{5, 0, 0}) {
		t.Fatalf("sorted order %v, %v", first, second)
	}
}

func TestPosQueueReinsertAfterRemove(t *testing.T) {
	q := newPosQueue()
	p := chunk.Pos{2, 2, 2}
	q.Insert(p)
	q.Remove(p)
	if !q.Insert(p) {
		t.Fatal("reinsert after remove rejected")
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d after reinsert", q.Len())
	}
}
