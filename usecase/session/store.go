// Package session holds the authenticated identity of the client and keeps
// its durable subset in a repository.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/api/transport"
	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/observe"
	"github.com/fastygo/stockdesk/repository"
	"github.com/fastygo/stockdesk/usecase"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"

	loginFallback    = "request could not be processed"
	registerFallback = "account could not be created"
)

type Store struct {
	auth   usecase.AuthGateway
	repo   repository.SessionRepository
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	persistMu sync.Mutex

	subject observe.Subject[State]
}

// New builds an empty store. repo may be nil, in which case nothing is persisted.
func New(auth usecase.AuthGateway, repo repository.SessionRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:   auth,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads the persisted session once at startup.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.repo.Load(ctx)
	if errors.Is(err, domain.ErrNotStored) {
		return nil
	}
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "restore session", err)
	}
	hydrated := Hydrate(*stored)
	s.mutate(func(st *State) { *st = hydrated })
	s.logger.Debug("session restored", zap.Bool("authenticated", hydrated.IsAuthenticated))
	return nil
}

// Login authenticates against the remote. On failure the current state is
// left untouched and the returned error is a *domain.RemoteError.
func (s *Store) Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := domain.Validate(creds); err != nil {
		return s.Current(), s.invalidInput(loginPath, err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	data, err := s.auth.Login(ctx, transport.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return s.Current(), s.reject(loginPath, loginFallback, err)
	}

	next := sessionFrom(data)
	if !next.IsAuthenticated {
		s.logger.Warn("login accepted without a token", zap.String("email", creds.Email))
		return s.Current(), s.unknown(loginPath, loginFallback)
	}

	s.commit(ctx, authenticate(next))
	s.logger.Info("user logged in", zap.String("user_id", next.User.ID))
	return next, nil
}

// Register creates an account. When the remote issues a token the session is
// authenticated right away. The welcome message is awaited but its failure
// does not fail the registration.
func (s *Store) Register(ctx context.Context, creds domain.RegisterCredentials) (domain.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Role == "" {
		creds.Role = domain.DefaultRole
	}
	if err := domain.Validate(creds); err != nil {
		return s.Current(), s.invalidInput(registerPath, err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	data, err := s.auth.Register(ctx, transport.RegisterRequest{
		Username: creds.Username,
		Email:    creds.Email,
		Password: creds.Password,
		Role:     creds.Role,
	})
	if err != nil {
		return s.Current(), s.reject(registerPath, registerFallback, err)
	}
	if data == nil {
		return s.Current(), s.unknown(registerPath, registerFallback)
	}

	if next := sessionFrom(data); next.IsAuthenticated {
		s.commit(ctx, authenticate(next))
	}

	welcome := transport.WelcomeRequest{Name: data.Username, Email: data.Email}
	if err := s.auth.Welcome(ctx, data.Token, welcome); err != nil {
		s.logger.Warn("welcome message failed", zap.String("email", data.Email), zap.Error(err))
	}

	return s.Current(), nil
}

// Validate asks the remote whether the held token is still accepted. A
// rejected token logs the session out.
func (s *Store) Validate(ctx context.Context) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	if err := s.auth.Validate(ctx, token); err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.logger.Info("token rejected, logging out", zap.Error(err))
		s.logoutIf(ctx, token)
		return false
	}
	return true
}

// Logout clears the session locally without contacting the remote.
func (s *Store) Logout(ctx context.Context) {
	s.logoutIf(ctx, "")
}

// Token returns the bearer token or an empty string.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Current returns a copy of the session.
func (s *Store) Current() domain.Session {
	return s.State().Session
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Subscribe registers fn for every state change.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.subject.Subscribe(fn)
}

// logoutIf clears the session when the held token still equals token, or
// unconditionally when token is empty.
func (s *Store) logoutIf(ctx context.Context, token string) {
	s.commit(ctx, func(st *State) bool {
		if token != "" && st.Token != token {
			return false
		}
		*st = State{Loading: st.Loading}
		return true
	})
}

// commit applies fn and, when it reports a change, persists the snapshot of
// the resulting state. persistMu keeps the repository in the order of the
// mutations.
func (s *Store) commit(ctx context.Context, fn func(*State) bool) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	changed := false
	next := s.mutate(func(st *State) { changed = fn(st) })
	if changed {
		s.persist(ctx, Snapshot(next))
	}
}

func (s *Store) persist(ctx context.Context, snapshot domain.Session) {
	if s.repo == nil {
		return
	}
	var err error
	if snapshot.IsAuthenticated {
		err = s.repo.Save(ctx, snapshot)
	} else {
		err = s.repo.Clear(ctx)
	}
	if err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
	}
}

func (s *Store) setLoading(v bool) {
	s.mutate(func(st *State) { st.Loading = v })
}

func (s *Store) mutate(fn func(*State)) State {
	return s.subject.Update(func() State {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(&s.state)
		return copyState(s.state)
	})
}

func (s *Store) reject(path, fallback string, err error) error {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		s.logger.Info("remote rejected request",
			zap.String("path", remote.Path),
			zap.Int("status", remote.Status),
			zap.String("message", remote.Message))
		return remote
	}
	s.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
	return s.unknown(path, fallback)
}

func (s *Store) unknown(path, message string) *domain.RemoteError {
	return &domain.RemoteError{
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Status:    500,
		Kind:      "unknown",
		Message:   message,
		Path:      path,
	}
}

func (s *Store) invalidInput(path string, err error) *domain.RemoteError {
	msg := err.Error()
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		msg = dErr.Message
	}
	return &domain.RemoteError{
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Status:    400,
		Kind:      "invalid input",
		Message:   msg,
		Path:      path,
	}
}

func authenticate(next domain.Session) func(*State) bool {
	return func(st *State) bool {
		st.Session = next
		return true
	}
}

func sessionFrom(data *transport.AuthData) domain.Session {
	if data == nil {
		return domain.Session{}
	}
	return domain.Session{
		IsAuthenticated: data.Token != "",
		Token:           data.Token,
		User: &domain.User{
			ID:    string(data.ID),
			Email: data.Email,
			Name:  data.Username,
			Role:  data.Role,
		},
	}.Normalize()
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
