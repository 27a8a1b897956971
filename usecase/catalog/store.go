// Package catalog caches one page of the remote product catalog and keeps it
// in sync after every write.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/observe"
	"github.com/fastygo/stockdesk/usecase"
)

const (
	DefaultPageSize = 10

	msgLoadFailed   = "failed to load products"
	msgCreateFailed = "could not create product"
	msgUpdateFailed = "could not update product"
	msgRemoveFailed = "could not remove product"
)

// State is a consistent copy of the cached page.
type State struct {
	Products []domain.Product
	Cursor   domain.Page
	Loading  bool
	Err      string
}

type Store struct {
	products usecase.ProductGateway
	session  usecase.SessionReader
	logger   *zap.Logger
	now      func() time.Time
	pageSize int

	mu    sync.RWMutex
	state State

	subject observe.Subject[State]
}

func New(products usecase.ProductGateway, session usecase.SessionReader, pageSize int, logger *zap.Logger) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		products: products,
		session:  session,
		logger:   logger,
		now:      time.Now,
		pageSize: pageSize,
		state:    State{Cursor: domain.Page{Size: pageSize}},
	}
}

// FetchPage loads one page and replaces the cache and cursor together. On
// failure the cached page is left as it was and State().Err explains why.
func (s *Store) FetchPage(ctx context.Context, page, size int) error {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.pageSize
	}
	token := s.session.Token()

	s.mutate(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	raw, err := s.products.ListProducts(ctx, token, page, size)
	if err != nil {
		msg := failureMessage(err, msgLoadFailed)
		s.logger.Warn("product fetch failed", zap.Int("page", page), zap.Int("size", size), zap.Error(err))
		s.mutate(func(st *State) {
			st.Loading = false
			st.Err = msg
		})
		return err
	}

	mapped := MapProducts(raw.Content, s.now())
	cursor := domain.Page{
		Page:          raw.Page,
		Size:          raw.Size,
		TotalElements: raw.TotalElements,
		TotalPages:    raw.TotalPages,
	}
	if cursor.Size <= 0 {
		cursor.Size = size
	}
	s.mutate(func(st *State) {
		st.Products = mapped
		st.Cursor = cursor
		st.Loading = false
	})
	return nil
}

// Create writes a new product and refetches the first page.
func (s *Store) Create(ctx context.Context, in domain.ProductInput) bool {
	in, ok := s.checkInput(in)
	if !ok {
		return false
	}
	token := s.session.Token()
	if err := s.products.CreateProduct(ctx, token, toRequest(in)); err != nil {
		s.fail("create", msgCreateFailed, err)
		return false
	}
	return s.resync(ctx, 0)
}

// Update writes the product and refetches the current page.
func (s *Store) Update(ctx context.Context, id string, in domain.ProductInput) bool {
	in, ok := s.checkInput(in)
	if !ok {
		return false
	}
	token := s.session.Token()
	if err := s.products.UpdateProduct(ctx, token, id, toRequest(in)); err != nil {
		s.fail("update", msgUpdateFailed, err)
		return false
	}
	return s.resync(ctx, s.State().Cursor.Page)
}

// Remove deletes the product and refetches the current page.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mutate(func(st *State) { st.Err = "" })
	token := s.session.Token()
	if err := s.products.DeleteProduct(ctx, token, id); err != nil {
		s.fail("remove", msgRemoveFailed, err)
		return false
	}
	return s.resync(ctx, s.State().Cursor.Page)
}

// Get looks a single product up remotely without touching the cache.
func (s *Store) Get(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := s.products.GetProduct(ctx, s.session.Token(), id)
	if err != nil {
		return nil, err
	}
	p := MapProduct(*raw, s.now())
	return &p, nil
}

// Reset returns the store to its initial empty state.
func (s *Store) Reset() {
	s.mutate(func(st *State) {
		*st = State{Cursor: domain.Page{Size: s.pageSize}}
	})
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.subject.Subscribe(fn)
}

// resync is the mandatory refetch after a write. The write only counts as
// successful when the refetch succeeds too.
func (s *Store) resync(ctx context.Context, page int) bool {
	size := s.State().Cursor.Size
	return s.FetchPage(ctx, page, size) == nil
}

func (s *Store) checkInput(in domain.ProductInput) (domain.ProductInput, bool) {
	in = in.Normalize()
	if err := domain.Validate(in); err != nil {
		msg := err.Error()
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			msg = dErr.Message
		}
		s.mutate(func(st *State) { st.Err = msg })
		return in, false
	}
	s.mutate(func(st *State) { st.Err = "" })
	return in, true
}

func (s *Store) fail(op, fallback string, err error) {
	msg := failureMessage(err, fallback)
	s.logger.Warn("product write failed", zap.String("operation", op), zap.Error(err))
	s.mutate(func(st *State) { st.Err = msg })
}

func (s *Store) mutate(fn func(*State)) {
	s.subject.Update(func() State {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(&s.state)
		return copyState(s.state)
	})
}

func failureMessage(err error, fallback string) string {
	if msg, ok := domain.RemoteMessage(err); ok {
		return msg
	}
	return fallback
}

func copyState(st State) State {
	if st.Products != nil {
		st.Products = append([]domain.Product(nil), st.Products...)
	}
	return st
}
