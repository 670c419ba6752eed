package depgraph

import (
	"fmt"
	"time"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/continuity"
)

// DefaultImplicitWindow is how soon after a segment's end the next one
// must start to pick up an implicit ordering edge.
const DefaultImplicitWindow = 30 * time.Minute

type Option func(*Graph)

func WithImplicitWindow(d time.Duration) Option {
	return func(g *Graph) { g.implicitWindow = d }
}

// DateBounds is the itinerary date range a cascading shift must respect.
// Nil ends are open.
type DateBounds struct {
	Start *time.Time
	End   *time.Time
}

func (b DateBounds) Contains(start, end time.Time) bool {
	if b.Start != nil && start.Before(*b.Start) {
		return false
	}
	if b.End != nil && end.After(*b.End) {
		return false
	}
	return true
}

// Conflict reports two exclusive segments occupying overlapping time
// ranges. A traveler cannot ride two conveyances at once.
type Conflict struct {
	FirstID  string        `json:"firstId"`
	SecondID string        `json:"secondId"`
	Overlap  time.Duration `json:"-"`
}

// Graph holds segments in a flat arena with edges as index pairs. An edge
// a -> b means b depends on a. Explicit edges come from dependsOn;
// implicit ones from chronological adjacency.
type Graph struct {
	arena []domain.Segment
	index map[string]int
	out   [][]int // out[a] lists dependents of a
	in    [][]int // in[b] lists prerequisites of b

	implicitWindow time.Duration
}

// New builds the graph from a segment collection. Explicit dependsOn
// references must resolve; a dangling reference is a validation error.
// Cycles already present in the input are tolerated here and surface on
// TopologicalOrder, so callers can still inspect the graph to fix them.
func New(segments []domain.Segment, opts ...Option) (*Graph, error) {
	g := &Graph{
		arena:          continuity.SortedByStart(segments),
		index:          make(map[string]int, len(segments)),
		implicitWindow: DefaultImplicitWindow,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.out = make([][]int, len(g.arena))
	g.in = make([][]int, len(g.arena))

	for i := range g.arena {
		id := g.arena[i].ID
		if _, dup := g.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate segment id %s", domain.ErrValidation, id)
		}
		g.index[id] = i
	}

	for bi := range g.arena {
		for _, depID := range g.arena[bi].DependsOn {
			ai, ok := g.index[depID]
			if !ok {
				return nil, fmt.Errorf("%w: segment %s depends on unknown segment %s", domain.ErrValidation, g.arena[bi].ID, depID)
			}
			if ai == bi {
				return nil, fmt.Errorf("%w: segment %s depends on itself", domain.ErrValidation, depID)
			}
			g.link(ai, bi)
		}
	}

	g.deriveImplicit()
	return g, nil
}

// deriveImplicit adds chronological edges: b depends on a when b starts
// within the implicit window after a ends. Background types (hotels,
// meetings) never receive implicit edges, and the arena's time order
// keeps the derived edges acyclic.
func (g *Graph) deriveImplicit() {
	for ai := range g.arena {
		a := &g.arena[ai]
		if a.EndTime.IsZero() {
			continue
		}
		for bi := ai + 1; bi < len(g.arena); bi++ {
			b := &g.arena[bi]
			if b.Type.Background() {
				continue
			}
			lead := b.StartTime.Sub(a.EndTime)
			if lead < 0 || lead > g.implicitWindow {
				continue
			}
			if !g.hasEdge(ai, bi) {
				g.link(ai, bi)
			}
		}
	}
}

func (g *Graph) link(ai, bi int) {
	g.out[ai] = append(g.out[ai], bi)
	g.in[bi] = append(g.in[bi], ai)
}

func (g *Graph) hasEdge(ai, bi int) bool {
	for _, to := range g.out[ai] {
		if to == bi {
			return true
		}
	}
	return false
}

// reachable reports whether to can be reached from from along dependency
// edges, iteratively to keep deep chains off the call stack.
func (g *Graph) reachable(from, to int) bool {
	if from == to {
		return true
	}
	visited := make([]bool, len(g.arena))
	stack := []int{from}
	visited[from] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.out[n] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// AddDependency records that dependent must come after prerequisite. The
// cycle check runs first; a rejected edge leaves the graph untouched.
func (g *Graph) AddDependency(prerequisiteID, dependentID string) error {
	ai, ok := g.index[prerequisiteID]
	if !ok {
		return fmt.Errorf("%w: segment %s", domain.ErrNotFound, prerequisiteID)
	}
	bi, ok := g.index[dependentID]
	if !ok {
		return fmt.Errorf("%w: segment %s", domain.ErrNotFound, dependentID)
	}
	if ai == bi || g.reachable(bi, ai) {
		return &domain.CycleError{FromID: prerequisiteID, ToID: dependentID}
	}
	if !g.hasEdge(ai, bi) {
		g.link(ai, bi)
		// Clone before appending: the slice may share its backing array
		// with the caller's segment.
		deps := append([]string(nil), g.arena[bi].DependsOn...)
		g.arena[bi].DependsOn = append(deps, prerequisiteID)
	}
	return nil
}

// TopologicalOrder returns the segments in an order where every segment
// follows all of its prerequisites. Ties resolve by arena position, so
// identical input yields an identical order.
func (g *Graph) TopologicalOrder() ([]domain.Segment, error) {
	indegree := make([]int, len(g.arena))
	for bi := range g.arena {
		indegree[bi] = len(g.in[bi])
	}

	ready := make([]int, 0, len(g.arena))
	for i := range g.arena {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]domain.Segment, 0, len(g.arena))
	for len(ready) > 0 {
		mi := 0
		for k := 1; k < len(ready); k++ {
			if ready[k] < ready[mi] {
				mi = k
			}
		}
		n := ready[mi]
		ready = append(ready[:mi], ready[mi+1:]...)

		order = append(order, g.arena[n])
		for _, next := range g.out[n] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(g.arena) {
		return nil, &domain.CycleError{}
	}
	return order, nil
}

// DetectConflicts reports overlapping time ranges between exclusive
// segments. Background and stationary types may overlap freely.
func (g *Graph) DetectConflicts() []Conflict {
	var conflicts []Conflict
	for i := range g.arena {
		a := &g.arena[i]
		if !a.Type.Exclusive() || a.EndTime.IsZero() {
			continue
		}
		for j := i + 1; j < len(g.arena); j++ {
			b := &g.arena[j]
			if !b.Type.Exclusive() || b.EndTime.IsZero() {
				continue
			}
			if !a.Overlaps(b) {
				continue
			}
			overlap := minTime(a.EndTime, b.EndTime).Sub(maxTime(a.StartTime, b.StartTime))
			conflicts = append(conflicts, Conflict{FirstID: a.ID, SecondID: b.ID, Overlap: overlap})
		}
	}
	return conflicts
}

// ShiftSegment moves a segment and every transitive dependent by the same
// delta. All target positions are validated against the bounds before
// anything moves; a violation aborts the whole shift so callers never see
// a half-moved itinerary. The returned ids list everything that moved.
func (g *Graph) ShiftSegment(id string, delta time.Duration, bounds DateBounds) ([]string, error) {
	root, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: segment %s", domain.ErrNotFound, id)
	}

	affected := g.collectDependents(root)
	for _, i := range affected {
		seg := &g.arena[i]
		newStart := seg.StartTime.Add(delta)
		newEnd := seg.EndTime
		if !newEnd.IsZero() {
			newEnd = newEnd.Add(delta)
		} else {
			newEnd = newStart
		}
		if !bounds.Contains(newStart, newEnd) {
			return nil, &domain.BoundsError{SegmentID: seg.ID, Start: newStart, End: newEnd}
		}
	}

	ids := make([]string, 0, len(affected))
	for _, i := range affected {
		seg := &g.arena[i]
		seg.StartTime = seg.StartTime.Add(delta)
		if !seg.EndTime.IsZero() {
			seg.EndTime = seg.EndTime.Add(delta)
		}
		ids = append(ids, seg.ID)
	}
	return ids, nil
}

// collectDependents gathers the root and its transitive dependents in
// discovery order.
func (g *Graph) collectDependents(root int) []int {
	visited := make([]bool, len(g.arena))
	visited[root] = true
	queue := []int{root}
	order := []int{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range g.out[n] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
				order = append(order, next)
			}
		}
	}
	return order
}

// Segments returns a copy of the arena in its current order.
func (g *Graph) Segments() []domain.Segment {
	segs := make([]domain.Segment, len(g.arena))
	copy(segs, g.arena)
	return segs
}

// Prerequisites lists the ids the given segment depends on, explicit and
// implicit.
func (g *Graph) Prerequisites(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(g.in[i]))
	for _, ai := range g.in[i] {
		ids = append(ids, g.arena[ai].ID)
	}
	return ids
}

// Dependents lists the ids that depend on the given segment.
func (g *Graph) Dependents(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(g.out[i]))
	for _, bi := range g.out[i] {
		ids = append(ids, g.arena[bi].ID)
	}
	return ids
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
