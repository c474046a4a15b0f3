package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olympus-platform/client-go/api"
	"github.com/olympus-platform/client-go/localstore"
	"github.com/olympus-platform/client-go/pkg/logger"
	"github.com/olympus-platform/client-go/resource"
)

// Manager is the session lifecycle state machine. Idle means no session,
// never an error; Failed is reserved for explicit login and register
// failures. Refresh failures are absorbed into a logout, so the container
// never observes Failed from a refresh.
//
// Methods do not serialize against each other: concurrent calls race to
// the container and the last completion wins, matching the container's
// ordering contract.
type Manager struct {
	remote    api.Remote
	store     localstore.Store
	log       *logger.Logger
	container *resource.Container[Session]
}

// NewManager creates a manager with an idle container. Call Bootstrap to
// reconstruct a persisted session.
func NewManager(remote api.Remote, store localstore.Store, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault("session")
	}
	return &Manager{
		remote:    remote,
		store:     store,
		log:       log,
		container: resource.NewContainer[Session](),
	}
}

// Container exposes the session container for reads and subscriptions.
func (m *Manager) Container() *resource.Container[Session] {
	return m.container
}

// Subscribe registers fn for every session state transition.
func (m *Manager) Subscribe(fn resource.Subscriber[Session]) func() {
	return m.container.Subscribe(fn)
}

// Current returns the latest session state.
func (m *Manager) Current() resource.State[Session] {
	return m.container.Current()
}

// AccessToken returns the current access token, or "" when no session is
// ready. Suitable as the API client's token source.
func (m *Manager) AccessToken() string {
	s, ok := m.container.Current().Value()
	if !ok {
		return ""
	}
	return s.AccessToken
}

// Bootstrap reconstructs a session from the local store. With a persisted
// access token and user record it transitions straight to Ready without a
// remote call, trusting the cached token until first use proves it
// invalid. Otherwise it transitions to Idle: absence of a session is not
// an error.
func (m *Manager) Bootstrap(ctx context.Context) error {
	accessToken, haveToken, err := m.store.Get(ctx, KeyAccessToken)
	if err != nil {
		m.container.SetIdle()
		return fmt.Errorf("read access token: %w", err)
	}
	userJSON, haveUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		m.container.SetIdle()
		return fmt.Errorf("read user record: %w", err)
	}

	if !haveToken || !haveUser || accessToken == "" || userJSON == "" {
		m.container.SetIdle()
		return nil
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		m.container.SetIdle()
		return fmt.Errorf("decode user record: %w", err)
	}

	refreshToken, _, err := m.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		m.container.SetIdle()
		return fmt.Errorf("read refresh token: %w", err)
	}

	m.container.SetReady(Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	m.log.WithField("user_id", user.ID).Debug("session restored from store")
	return nil
}

// Login authenticates with email and password. Storage is written only
// after the remote call succeeds, so a failed login never corrupts a
// previously persisted session.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.container.SetLoading()

	payload := map[string]string{"email": email, "password": password}
	body, err := m.remote.Do(ctx, "POST", "/auth/login", payload, nil)
	if err != nil {
		m.container.SetFailed(err)
		return err
	}

	return m.adoptTokenResponse(ctx, body)
}

// Register creates an account and signs in, symmetric to Login.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) error {
	m.container.SetLoading()

	body, err := m.remote.Do(ctx, "POST", "/auth/register", req, nil)
	if err != nil {
		m.container.SetFailed(err)
		return err
	}

	return m.adoptTokenResponse(ctx, body)
}

func (m *Manager) adoptTokenResponse(ctx context.Context, body []byte) error {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = fmt.Errorf("unmarshal auth response: %w", err)
		m.container.SetFailed(err)
		return err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		err := fmt.Errorf("auth response missing tokens")
		m.container.SetFailed(err)
		return err
	}

	if err := m.persist(ctx, resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		m.container.SetFailed(err)
		return err
	}

	m.container.SetReady(Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	m.log.WithField("user_id", resp.User.ID).Info("session established")
	return nil
}

// Refresh renews the access token using the persisted refresh token. With
// no persisted token it transitions straight to Idle without a remote
// call. Any remote failure is absorbed into a logout: refresh never
// leaves the state machine in Failed.
func (m *Manager) Refresh(ctx context.Context) error {
	refreshToken, have, err := m.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if !have || refreshToken == "" {
		m.clearStore(ctx)
		m.container.SetIdle()
		return nil
	}

	m.container.SetLoading()

	payload := map[string]string{"refresh_token": refreshToken}
	body, err := m.remote.Do(ctx, "POST", "/auth/refresh", payload, nil)
	if err != nil {
		m.log.WithError(err).Warn("token refresh failed, logging out")
		if lerr := m.Logout(ctx); lerr != nil {
			m.log.WithError(lerr).Warn("logout after failed refresh")
		}
		return err
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = fmt.Errorf("unmarshal refresh response: %w", err)
		if lerr := m.Logout(ctx); lerr != nil {
			m.log.WithError(lerr).Warn("logout after failed refresh")
		}
		return err
	}

	if err := m.persist(ctx, resp.AccessToken, refreshToken, resp.User); err != nil {
		if lerr := m.Logout(ctx); lerr != nil {
			m.log.WithError(lerr).Warn("logout after failed refresh")
		}
		return err
	}

	m.container.SetReady(Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: refreshToken,
	})
	m.log.Debug("access token refreshed")
	return nil
}

// Logout notifies the backend best-effort, then clears the persisted slots
// and transitions to Idle. The remote outcome is ignored so the client can
// always log out, reachable backend or not. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := m.remote.Do(ctx, "POST", "/auth/logout", nil, nil); err != nil {
		m.log.WithError(err).Debug("remote logout ignored")
	}

	err := m.clearStore(ctx)
	m.container.SetIdle()
	return err
}

// UpdateProfile submits a profile change. On success the user record is
// re-persisted and the session republished with the same tokens; on
// failure the state is left exactly as it was and the error is returned.
func (m *Manager) UpdateProfile(ctx context.Context, profile UserProfile) error {
	body, err := m.remote.Do(ctx, "PUT", "/auth/profile", profile, nil)
	if err != nil {
		return err
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal profile response: %w", err)
	}

	if err := m.persistUser(ctx, resp.User); err != nil {
		return err
	}

	m.container.Mutate(func(s resource.State[Session]) (resource.State[Session], bool) {
		sess, ok := s.Value()
		if !ok {
			return s, false
		}
		sess.User = resp.User
		return resource.Ready(sess), true
	})
	return nil
}

// TokenExpiresWithin reports whether the current access token's exp claim
// falls within d from now. An absent session or an unparsable token
// reports true, so callers err on the side of refreshing.
func (m *Manager) TokenExpiresWithin(d time.Duration) bool {
	s, ok := m.container.Current().Value()
	if !ok {
		return true
	}

	// The signature is the server's concern; only the exp claim matters
	// for scheduling.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) <= d
}

func (m *Manager) persist(ctx context.Context, accessToken, refreshToken string, user UserProfile) error {
	if err := m.store.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := m.store.Set(ctx, KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	return m.persistUser(ctx, user)
}

func (m *Manager) persistUser(ctx context.Context, user UserProfile) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(userJSON)); err != nil {
		return fmt.Errorf("persist user record: %w", err)
	}
	return nil
}

func (m *Manager) clearStore(ctx context.Context) error {
	var firstErr error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := m.store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return firstErr
}
