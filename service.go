package raycast

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// QueryMode selects whether a query reports every hit or only the nearest.
type QueryMode int

const (
	AllHits QueryMode = iota
	FirstHit
)

func (m QueryMode) String() string {
	switch m {
	case AllHits:
		return "AllHits"
	case FirstHit:
		return "FirstHit"
	}
	return fmt.Sprintf("QueryMode(%d)", int(m))
}

// QueryHandle identifies one query of one service. Zero is never issued.
type QueryHandle uint64

// QueryState is the lifecycle stage of a handle.
type QueryState int

const (
	QueryUnknown QueryState = iota
	QueryPending
	QueryCompleted
	QueryFetched
)

func (s QueryState) String() string {
	switch s {
	case QueryPending:
		return "Pending"
	case QueryCompleted:
		return "Completed"
	case QueryFetched:
		return "Fetched"
	}
	return "Unknown"
}

// Hit is one volume crossed by a query ray.
type Hit struct {
	Entity   EntityId
	Distance float32
	Point    mgl32.Vec3
}

// QueryResult holds the hits of one query ordered by ascending distance.
type QueryResult struct {
	Handle QueryHandle
	Hits   []Hit
}

// EntitiesHit returns the ids of the hit entities ordered by ascending
// distance.
func (r QueryResult) EntitiesHit() []EntityId {
	ids := make([]EntityId, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.Entity
	}
	return ids
}

type pendingQuery struct {
	done   chan struct{}
	result QueryResult
}

func (q *pendingQuery) completed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// RayCastingService runs ray queries against provider supplied volumes and
// keeps each result until it is fetched once.
type RayCastingService struct {
	opts options
	log  Logger

	mu      sync.Mutex
	last    QueryHandle
	queries map[QueryHandle]*pendingQuery

	// closeMu orders scheduling on workers against Close.
	closeMu sync.RWMutex
	closed  bool
	workers *errgroup.Group
}

func NewRayCastingService(opts ...Option) *RayCastingService {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &RayCastingService{
		opts:    o,
		log:     Named(loggerOrNop(o.logger), "query"),
		queries: make(map[QueryHandle]*pendingQuery),
	}
	if o.workers > 0 {
		s.workers = &errgroup.Group{}
		s.workers.SetLimit(o.workers)
	}
	return s
}

// Query registers a new query and returns its handle. In synchronous mode the
// result is complete on return; with workers it may still be pending, and
// Query blocks only while every worker is busy.
func (s *RayCastingService) Query(ray Ray, mode QueryMode, provider BoundingVolumeProvider) QueryHandle {
	q := &pendingQuery{done: make(chan struct{})}

	s.mu.Lock()
	s.last++
	h := s.last
	s.queries[h] = q
	s.mu.Unlock()

	run := func() {
		q.result = s.compute(h, ray, mode, provider)
		close(q.done)
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.workers == nil || s.closed {
		run()
		return h
	}
	s.workers.Go(func() error {
		run()
		return nil
	})
	return h
}

func (s *RayCastingService) compute(h QueryHandle, ray Ray, mode QueryMode, provider BoundingVolumeProvider) QueryResult {
	var volumes []BoundingVolume
	if provider != nil {
		volumes = provider.BoundingVolumes()
	}

	hits := make([]Hit, 0)
	for _, v := range volumes {
		if v == nil {
			continue
		}
		p, ok := v.Intersects(ray)
		if !ok {
			continue
		}
		d := p.Sub(ray.Origin).Len()
		if s.opts.maxDistance > 0 && d > s.opts.maxDistance {
			continue
		}
		hit := Hit{Entity: v.ID(), Distance: d, Point: p}

		if mode == FirstHit {
			// Strictly closer only, so ties keep provider order.
			if len(hits) == 0 || d < hits[0].Distance {
				hits = append(hits[:0], hit)
			}
			continue
		}
		hits = append(hits, hit)
	}

	if mode == AllHits {
		slices.SortStableFunc(hits, func(a, b Hit) int {
			return cmp.Compare(a.Distance, b.Distance)
		})
	}

	if s.log.DebugEnabled() {
		s.log.Debugf("query done%s", Fields{
			"handle":  h,
			"mode":    mode,
			"volumes": len(volumes),
			"hits":    len(hits),
			"nearest": nearestEntity(hits),
		})
	}
	return QueryResult{Handle: h, Hits: hits}
}

// FetchResult returns and removes the result for h, waiting for a pending
// query until ctx is done. A cancelled wait leaves the handle valid.
func (s *RayCastingService) FetchResult(ctx context.Context, h QueryHandle) (QueryResult, error) {
	s.mu.Lock()
	q, ok := s.queries[h]
	if !ok {
		err := s.handleErrorLocked(h)
		s.mu.Unlock()
		s.log.Warnf("fetch rejected: %v%s", err, Fields{"handle": h})
		return QueryResult{}, err
	}
	s.mu.Unlock()

	// A completed result is returned even when ctx is already done.
	if !q.completed() {
		select {
		case <-q.done:
		case <-ctx.Done():
			return QueryResult{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have won the race while we waited.
	if _, ok := s.queries[h]; !ok {
		return QueryResult{}, ErrHandleConsumed
	}
	delete(s.queries, h)
	return q.result, nil
}

// FetchAllResults returns every completed, unfetched result in handle order
// and removes them. Pending queries are left in place.
func (s *RayCastingService) FetchAllResults() []QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := make([]QueryHandle, 0, len(s.queries))
	for h, q := range s.queries {
		if q.completed() {
			handles = append(handles, h)
		}
	}
	slices.Sort(handles)

	results := make([]QueryResult, 0, len(handles))
	for _, h := range handles {
		results = append(results, s.queries[h].result)
		delete(s.queries, h)
	}
	return results
}

func (s *RayCastingService) State(h QueryHandle) QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[h]
	switch {
	case ok && q.completed():
		return QueryCompleted
	case ok:
		return QueryPending
	case h == 0 || h > s.last:
		return QueryUnknown
	}
	return QueryFetched
}

// Close waits for in-flight work. Queries issued afterwards run synchronously.
func (s *RayCastingService) Close() error {
	s.closeMu.Lock()
	s.closed = true
	s.closeMu.Unlock()

	if s.workers == nil {
		return nil
	}
	return s.workers.Wait()
}

func nearestEntity(hits []Hit) EntityId {
	if len(hits) == 0 {
		return NullEntity
	}
	return hits[0].Entity
}

func (s *RayCastingService) handleErrorLocked(h QueryHandle) error {
	if h == 0 || h > s.last {
		return ErrUnknownHandle
	}
	return ErrHandleConsumed
}
