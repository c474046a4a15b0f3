package session

import (
	"context"
	"net/url"

	"github.com/olympus-platform/client-go/api"
)

// AuthRetry decorates a remote port with a single refresh-and-retry on
// Unauthorized responses. The coordinator layer never retries on its own;
// wiring this wrapper in is an explicit opt-in.
type AuthRetry struct {
	remote  api.Remote
	manager *Manager
}

var _ api.Remote = (*AuthRetry)(nil)

// NewAuthRetry wraps remote with 401 recovery backed by manager.
func NewAuthRetry(remote api.Remote, manager *Manager) *AuthRetry {
	return &AuthRetry{remote: remote, manager: manager}
}

// Do executes the request; on Unauthorized it refreshes the session once
// and replays the request once. A failed refresh (which already logged the
// session out) surfaces the original Unauthorized error.
func (a *AuthRetry) Do(ctx context.Context, method, path string, body interface{}, query url.Values) ([]byte, error) {
	respBody, err := a.remote.Do(ctx, method, path, body, query)
	if err == nil || !api.IsUnauthorized(err) {
		return respBody, err
	}

	if rerr := a.manager.Refresh(ctx); rerr != nil {
		return nil, err
	}

	return a.remote.Do(ctx, method, path, body, query)
}
