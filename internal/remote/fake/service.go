package fake

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote"
)

// Service is an in-memory remote.Service.
//
// Thread-safety: all methods are safe for concurrent use.
type Service struct {
	mu sync.Mutex

	orders     map[int64]map[int64]model.Order
	products   map[int64]map[int64]model.Product
	refunds    map[int64]map[int64]model.Refund
	tags       map[int64]map[int64]model.ProductTag
	attributes map[int64]map[int64]model.StoreAttribute
	classes    map[int64]map[int64]model.ShippingClass
	tracking   map[int64]map[string]model.ShipmentTracking
	settings   map[int64][]model.SiteSetting
	orderStats map[int64]model.OrderStats
	visitStats map[int64]model.VisitStats

	failOnce map[string][]error
	failAll  map[string]error
	gates    map[string]chan struct{}
	calls    map[string]int
	nextID   int64
}

var _ remote.Service = (*Service)(nil)

// New creates an empty service.
func New() *Service {
	return &Service{
		orders:     make(map[int64]map[int64]model.Order),
		products:   make(map[int64]map[int64]model.Product),
		refunds:    make(map[int64]map[int64]model.Refund),
		tags:       make(map[int64]map[int64]model.ProductTag),
		attributes: make(map[int64]map[int64]model.StoreAttribute),
		classes:    make(map[int64]map[int64]model.ShippingClass),
		tracking:   make(map[int64]map[string]model.ShipmentTracking),
		settings:   make(map[int64][]model.SiteSetting),
		orderStats: make(map[int64]model.OrderStats),
		visitStats: make(map[int64]model.VisitStats),
		failOnce:   make(map[string][]error),
		failAll:    make(map[string]error),
		gates:      make(map[string]chan struct{}),
		calls:      make(map[string]int),
		nextID:     10000,
	}
}

// FailNext makes the next call of op return err.
func (s *Service) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOnce[op] = append(s.failOnce[op], err)
}

// Fail makes every call of op return err until Recover is called.
func (s *Service) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll[op] = err
}

// Recover clears the persistent failure of op.
func (s *Service) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failAll, op)
}

// Block makes calls of op wait until the returned release func is called
// or their context ends.
func (s *Service) Block(op string) (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[op] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[op] == gate {
				delete(s.gates, op)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many times op was called.
func (s *Service) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records a call, waits on a gate and returns any injected failure.
// It must be called without holding s.mu.
func (s *Service) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	gate := s.gates[op]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return remote.Transport(ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if errs := s.failOnce[op]; len(errs) > 0 {
		s.failOnce[op] = errs[1:]
		return errs[0]
	}
	return s.failAll[op]
}

func (s *Service) newID() int64 {
	s.nextID++
	return s.nextID
}

// paginate returns the 1-based page of items.
func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := min(start+pageSize, len(items))
	return slices.Clone(items[start:end])
}

func sortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func bucket[K comparable, V any](m map[int64]map[K]V, siteID int64) map[K]V {
	b, ok := m[siteID]
	if !ok {
		b = make(map[K]V)
		m[siteID] = b
	}
	return b
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func notFound(what string, id any) error {
	return remote.NotFound("rest_invalid_id", fmt.Sprintf("Invalid %s ID %v.", what, id))
}
