// Package session holds the client's authentication state and owns every
// transition of it. All reads of the current user/token go through a
// Snapshot; all writes go through Login, Register, Restore, and Logout.
// Nothing else in the client mutates session state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/avolkov/fileshare/internal/client/api"
)

// State enumerates the session lifecycle.
type State string

const (
	// StateAnonymous: no token, no user.
	StateAnonymous State = "anonymous"
	// StateRestoring: credentials or a persisted token are being validated;
	// also the holding state while a second factor is outstanding.
	StateRestoring State = "restoring"
	// StateAuthenticated: token and user are set and server-validated.
	StateAuthenticated State = "authenticated"
	// StateError: the last authentication attempt failed; Error carries the
	// message.
	StateError State = "error"
)

// ErrRegisteredLoginFailed is the compound-registration partial failure: the
// account exists but the automatic login after creation did not succeed.
var ErrRegisteredLoginFailed = errors.New("Registration successful but login failed")

// authAPI is the slice of the REST client the session store needs.
type authAPI interface {
	Login(ctx context.Context, username, password, otpCode string) (*api.LoginResult, error)
	Register(ctx context.Context, username, email, password string) (*api.RegisterResult, error)
	Validate(ctx context.Context) (*api.User, error)
}

// tokenStore abstracts the persisted token (see tokenstore.Store).
type tokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

// Snapshot is a point-in-time copy of session state.
type Snapshot struct {
	State           State
	User            *api.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Store is the session state machine. It is safe for concurrent use; a
// generation counter makes sure a response that settles after a newer
// transition has started is discarded instead of overwriting fresher state.
type Store struct {
	api    authAPI
	tokens tokenStore

	mu      sync.Mutex
	gen     uint64
	state   State
	user    *api.User
	err     string
	loading bool
}

// New creates a session store. If a token was persisted from a previous run
// the store starts in StateRestoring and the caller should invoke Restore.
func New(a authAPI, tokens tokenStore) *Store {
	s := &Store{api: a, tokens: tokens, state: StateAnonymous}
	if tokens.Token() != "" {
		s.state = StateRestoring
		s.loading = true
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:           s.state,
		Token:           s.tokens.Token(),
		IsAuthenticated: s.state == StateAuthenticated,
		Loading:         s.loading,
		Error:           s.err,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// begin records the start of a transition and returns its generation. A
// response is applied only if no newer transition started meanwhile.
func (s *Store) begin(state State) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = state
	s.loading = true
	s.err = ""
	return s.gen
}

// stale reports (under the lock) whether gen has been superseded.
func (s *Store) stale(gen uint64) bool {
	return gen != s.gen
}

// Restore validates a persisted token at process start. On success the
// session becomes authenticated with the returned user; on failure the token
// is cleared and the session returns to anonymous; an old token is not an
// error the user can act on.
func (s *Store) Restore(ctx context.Context) error {
	if s.tokens.Token() == "" {
		s.mu.Lock()
		s.state = StateAnonymous
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	gen := s.begin(StateRestoring)

	user, err := s.api.Validate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(gen) {
		return nil
	}
	s.loading = false

	if err != nil {
		_ = s.tokens.Clear()
		s.state = StateAnonymous
		s.user = nil
		return err
	}

	s.state = StateAuthenticated
	s.user = user
	return nil
}

// Login authenticates with credentials and an optional one-time code. When
// the server demands a second factor the session stays in StateRestoring and
// the returned error matches api.ErrSecondFactorRequired; calling Login
// again with the code completes the transition.
func (s *Store) Login(ctx context.Context, username, password, otpCode string) error {
	return s.login(ctx, username, password, otpCode, nil)
}

// login runs the transition. When failErr is non-nil a failure is recorded
// and surfaced as failErr instead of the raw login error; the substitution
// happens inside the transition's own critical section so a newer transition
// (a concurrent Logout, say) can never be overwritten by it.
func (s *Store) login(ctx context.Context, username, password, otpCode string, failErr error) error {
	gen := s.begin(StateRestoring)

	res, err := s.api.Login(ctx, username, password, otpCode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(gen) {
		return nil
	}
	s.loading = false

	if err != nil {
		if failErr != nil {
			s.state = StateError
			s.user = nil
			s.err = failErr.Error()
			return failErr
		}
		if errors.Is(err, api.ErrSecondFactorRequired) {
			// No token produced yet; stay in restoring awaiting the code.
			s.err = err.Error()
			return err
		}
		s.state = StateError
		s.user = nil
		s.err = err.Error()
		return err
	}

	if saveErr := s.tokens.Save(res.Token); saveErr != nil {
		s.state = StateError
		s.err = fmt.Sprintf("saving session token: %v", saveErr)
		return saveErr
	}

	u := res.User
	s.state = StateAuthenticated
	s.user = &u
	s.err = ""
	return nil
}

// Register creates an account and then logs in with the same credentials.
// If the account is created but the follow-up login fails, the session stays
// unauthenticated and the error is ErrRegisteredLoginFailed rather than the
// raw login error.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	gen := s.begin(StateRestoring)

	res, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stale(gen) {
			return nil
		}
		s.loading = false
		s.state = StateError
		s.err = err.Error()
		return err
	}

	if res.User == nil {
		// Server accepted the request but did not signal a created user.
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stale(gen) {
			return nil
		}
		s.loading = false
		s.state = StateAnonymous
		return nil
	}

	// The server registers accounts by email; the automatic login uses the
	// email as the login identifier. The compound error is substituted inside
	// the login transition itself so it respects the generation guard.
	return s.login(ctx, email, password, "", ErrRegisteredLoginFailed)
}

// Logout tears the session down: token, user, and error are cleared and the
// state returns to anonymous. It is idempotent and safe to call from any
// goroutine, including the API client's unauthorized observer; any in-flight
// transition is invalidated so its late response cannot resurrect the
// session.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	_ = s.tokens.Clear()
	s.state = StateAnonymous
	s.user = nil
	s.err = ""
	s.loading = false
}
