// Package session holds the process-wide "who is signed in" state. A Store
// is created once, initialized once and disposed when the process is done
// with it; everything else reads snapshots from it or watches it.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/logger"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
)

// signInSettle bounds how long SignIn waits for the provider's SIGNED_IN
// notification to be applied.
const signInSettle = 10 * time.Second

// Gateway is the part of the auth gateway the store depends on.
type Gateway interface {
	SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*models.Session, error)
	GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error)
	OnAuthStateChange(fn func(models.AuthChange)) func()
}

type Store struct {
	gateway Gateway
	log     *logger.Logger

	// ctx bounds work started by provider notifications; cancelled on Dispose.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	identity    *models.Identity
	profile     *models.UserProfile
	profileErr  error
	inflight    int
	initialized bool
	closed      bool
	// generation moves on every identity-changing write. A notification's
	// result only lands if the generation it started under is still current.
	generation uint64
	// profileTickets orders profile fetches by start. For an unchanged
	// identity, a profile only replaces one fetched before it.
	profileTickets uint64
	profileTicket  uint64
	unsubscribe    func()
	watchers       map[int]chan State
	nextWatcher    int
}

func New(gateway Gateway, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		gateway:  gateway,
		log:      log.With("component", "session"),
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[int]chan State),
	}
}

// Initialize subscribes to provider session changes and restores any
// existing provider session. It may be called once per store.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperror.NewPrecondition("session store is disposed")
	}
	if s.initialized {
		s.mu.Unlock()
		return apperror.NewPrecondition("session store already initialized")
	}
	s.initialized = true
	s.unsubscribe = s.gateway.OnAuthStateChange(s.handleAuthChange)
	gen := s.generation
	s.inflight++
	s.publishLocked()
	s.mu.Unlock()
	defer s.end()

	current, err := s.gateway.GetSession(ctx)
	if err != nil {
		s.log.Error("failed to restore session", "error", err)
		return err
	}
	if current == nil {
		return nil
	}

	user := current.User
	profile, ticket, profileErr := s.fetchProfile(ctx, user.ID)

	s.mu.Lock()
	if !s.closed && s.generation == gen {
		s.landLocked(&user, profile, profileErr, ticket)
	}
	s.mu.Unlock()
	return nil
}

// Dispose releases the provider subscription and closes all watchers.
// Results of operations still in flight are discarded.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.mu.Unlock()

	s.cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignUp asks the provider to create an account. Success does not sign the
// user in; the provider may require email confirmation first.
func (s *Store) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, apperror.NewValidation("full name is required")
	}
	if in.UserScope == "" {
		in.UserScope = models.ScopeExternal
	}
	if !models.IsValidScope(in.UserScope) {
		return nil, apperror.NewValidation("user scope must be internal or external")
	}

	s.begin()
	defer s.end()

	result, err := s.gateway.SignUp(ctx, in)
	if err != nil {
		s.log.Debug("sign up failed", "error", err)
		return nil, err
	}
	return result, nil
}

// SignIn authenticates with the provider. The resulting identity arrives
// through the provider's SIGNED_IN notification, not from this call; SignIn
// stays loading until that notification has been applied.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	s.begin()
	defer s.end()

	established, err := s.gateway.SignIn(ctx, email, password)
	if err != nil {
		s.log.Debug("sign in failed", "error", err)
		return err
	}
	if established != nil {
		s.awaitIdentity(ctx, established.User.ID)
	}
	return nil
}

// awaitIdentity blocks until the store holds the given identity, the store is
// disposed, ctx ends or signInSettle passes.
func (s *Store) awaitIdentity(ctx context.Context, id uuid.UUID) {
	updates, cancel := s.Watch()
	defer cancel()

	timer := time.NewTimer(signInSettle)
	defer timer.Stop()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return
			}
			if st.Identity != nil && st.Identity.ID == id {
				return
			}
		case <-ctx.Done():
			s.log.Debug("stopped waiting for sign-in notification", "user_id", id, "error", ctx.Err())
			return
		case <-timer.C:
			s.log.Warn("sign-in notification not applied in time", "user_id", id)
			return
		}
	}
}

// SignOut ends the provider session and clears local state. When the
// provider fails, local state is kept.
func (s *Store) SignOut(ctx context.Context) error {
	s.begin()
	defer s.end()

	if err := s.gateway.SignOut(ctx); err != nil {
		s.log.Debug("sign out failed", "error", err)
		return err
	}

	s.mu.Lock()
	if !s.closed {
		s.generation++
		s.setLocked(nil, nil, nil)
	}
	s.mu.Unlock()
	return nil
}

// UpdateProfile writes the given fields and then re-reads the whole profile
// so the in-memory copy matches the stored row.
func (s *Store) UpdateProfile(ctx context.Context, updates models.ProfileUpdate) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return apperror.NewPrecondition("no user logged in")
	}
	id := s.identity.ID
	s.mu.Unlock()

	if updates.FullName != nil && strings.TrimSpace(*updates.FullName) == "" {
		return apperror.NewValidation("full name cannot be empty")
	}
	if updates.UserType != nil && !models.IsValidUserType(*updates.UserType) {
		return apperror.NewValidation("unknown user type")
	}

	s.begin()
	defer s.end()

	if _, err := s.gateway.UpdateProfile(ctx, id, updates); err != nil {
		s.log.Debug("profile update failed", "user_id", id, "error", err)
		return err
	}

	profile, ticket, profileErr := s.fetchProfile(ctx, id)

	// A sign-out or account switch meanwhile wins; a notification for the
	// same identity does not.
	s.mu.Lock()
	if !s.closed && s.identity != nil && s.identity.ID == id {
		s.landLocked(s.identity, profile, profileErr, ticket)
	}
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Watch returns a channel that receives the current state and then every
// change. Slow readers only see the latest state. The channel is closed by
// the returned cancel func or by Dispose.
func (s *Store) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	ch <- s.stateLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
}

func (s *Store) handleAuthChange(change models.AuthChange) {
	s.log.Info("auth state changed", "event", string(change.Event))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation

	if change.Session == nil {
		s.setLocked(nil, nil, nil)
		s.publishLocked()
		s.mu.Unlock()
		return
	}

	s.inflight++
	s.publishLocked()
	s.mu.Unlock()

	user := change.Session.User
	profile, ticket, profileErr := s.fetchProfile(s.ctx, user.ID)

	// Landing and leaving the loading state are published together.
	s.mu.Lock()
	if !s.closed && s.generation == gen {
		s.landLocked(&user, profile, profileErr, ticket)
	}
	s.inflight--
	s.publishLocked()
	s.mu.Unlock()
}

// loadProfile fetches the profile for an established identity. A failure is
// logged and returned as the degraded-state marker, never raised.
func (s *Store) loadProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.gateway.GetUserProfile(ctx, id)
	if err != nil {
		s.log.Warn("could not load profile", "user_id", id, "error", err)
		return nil, err
	}
	return profile, nil
}

// fetchProfile loads a profile and returns the ticket it was started under.
func (s *Store) fetchProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, uint64, error) {
	s.mu.Lock()
	s.profileTickets++
	ticket := s.profileTickets
	s.mu.Unlock()

	profile, err := s.loadProfile(ctx, id)
	return profile, ticket, err
}

// landLocked installs identity with a profile fetched under ticket. For the
// identity already held, an older fetch updates the identity only.
func (s *Store) landLocked(identity *models.Identity, profile *models.UserProfile, profileErr error, ticket uint64) {
	if s.identity != nil && s.identity.ID == identity.ID && ticket < s.profileTicket {
		s.identity = identity
		return
	}
	s.setLocked(identity, profile, profileErr)
	s.profileTicket = ticket
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.publishLocked()
	s.mu.Unlock()
}

func (s *Store) setLocked(identity *models.Identity, profile *models.UserProfile, profileErr error) {
	if identity == nil {
		profile, profileErr = nil, nil
	}
	s.identity = identity
	s.profile = profile
	s.profileErr = profileErr
}

func (s *Store) stateLocked() State {
	st := State{
		Loading:    s.inflight > 0,
		ProfileErr: s.profileErr,
	}
	if s.identity != nil {
		identity := *s.identity
		st.Identity = &identity
	}
	if s.profile != nil {
		profile := *s.profile
		st.Profile = &profile
	}

	switch {
	case st.Loading:
		st.Status = StatusLoading
	case !s.initialized:
		st.Status = StatusUninitialized
	case st.Identity != nil:
		st.Status = StatusAuthenticated
	default:
		st.Status = StatusUnauthenticated
	}
	return st
}

func (s *Store) publishLocked() {
	if s.closed {
		return
	}
	st := s.stateLocked()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
