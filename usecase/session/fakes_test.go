package session

import (
	"context"
	"sync"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
)

type fakeAuth struct {
	mu sync.Mutex

	loginFn    func(req transport.LoginRequest) (*transport.AuthData, error)
	registerFn func(req transport.RegisterRequest) (*transport.AuthData, error)
	validateFn func(token string) error
	welcomeFn  func(token string, req transport.WelcomeRequest) error

	calls    map[string]int
	register []transport.RegisterRequest
	welcomes []transport.WelcomeRequest
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{calls: map[string]int{}}
}

func (f *fakeAuth) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAuth) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAuth) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAuth) Login(_ context.Context, req transport.LoginRequest) (*transport.AuthData, error) {
	f.hit("login")
	return f.loginFn(req)
}

func (f *fakeAuth) Register(_ context.Context, req transport.RegisterRequest) (*transport.AuthData, error) {
	f.hit("register")
	f.mu.Lock()
	f.register = append(f.register, req)
	f.mu.Unlock()
	return f.registerFn(req)
}

func (f *fakeAuth) Validate(_ context.Context, token string) error {
	f.hit("validate")
	if f.validateFn == nil {
		return nil
	}
	return f.validateFn(token)
}

func (f *fakeAuth) Welcome(_ context.Context, token string, req transport.WelcomeRequest) error {
	f.hit("welcome")
	f.mu.Lock()
	f.welcomes = append(f.welcomes, req)
	f.mu.Unlock()
	if f.welcomeFn == nil {
		return nil
	}
	return f.welcomeFn(token, req)
}

type memoryRepo struct {
	mu      sync.Mutex
	stored  *domain.Session
	saves   int
	clears  int
	loadErr error
}

func (r *memoryRepo) Load(context.Context) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.stored == nil {
		return nil, domain.ErrNotStored
	}
	s := *r.stored
	return &s, nil
}

func (r *memoryRepo) Save(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.stored = &s
	return nil
}

func (r *memoryRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.stored = nil
	return nil
}
