package weapons

import "container/heap"

// DeferredKind names a scheduled weapon effect.
type DeferredKind int

const (
	DeferredReloadComplete DeferredKind = iota
	DeferredOverheatClear
)

// Deferred is one scheduled effect entry. Entries are drained strictly
// between ticks so completions never race in-tick weapon access, and they
// no-op if the owning player or weapon is gone by the time they fire.
type Deferred struct {
	DueTick uint64
	OwnerID string
	Weapon  Type
	Kind    DeferredKind

	seq uint64
}

// Scheduler is a min-heap of deferred effects keyed by due tick, with
// insertion order breaking ties for determinism.
type Scheduler struct {
	entries deferredHeap
	nextSeq uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule queues an effect to fire at dueTick.
func (s *Scheduler) Schedule(dueTick uint64, owner string, weapon Type, kind DeferredKind) {
	s.nextSeq++
	heap.Push(&s.entries, Deferred{
		DueTick: dueTick,
		OwnerID: owner,
		Weapon:  weapon,
		Kind:    kind,
		seq:     s.nextSeq,
	})
}

// Due pops every entry due at or before tick, in (dueTick, insertion)
// order.
func (s *Scheduler) Due(tick uint64) []Deferred {
	var due []Deferred
	for s.entries.Len() > 0 && s.entries[0].DueTick <= tick {
		due = append(due, heap.Pop(&s.entries).(Deferred))
	}
	return due
}

// Len reports the number of pending entries.
func (s *Scheduler) Len() int {
	return s.entries.Len()
}

type deferredHeap []Deferred

func (h deferredHeap) Len() int { return len(h) }

func (h deferredHeap) Less(i, j int) bool {
	if h[i].DueTick != h[j].DueTick {
		return h[i].DueTick < h[j].DueTick
	}
	return h[i].seq < h[j].seq
}

func (h deferredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deferredHeap) Push(x any) {
	*h = append(*h, x.(Deferred))
}

func (h *deferredHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}
