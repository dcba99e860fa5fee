package sustech

import (
	"context"
	"errors"
	"net/http"
	"sustechcourse-backend/lib/telemetry"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	portal := newFakePortal(t)
	rec := &telemetry.Recorder{}

	session, err := portal.newSession(t, rec).Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, session)

	require.Equal(t, portal.url()+queryFormPath, portal.lastLoginQuery().Get("service"))

	require.Len(t, portal.logins(), 1)
	post := portal.logins()[0]
	require.Equal(t, "alice", post.Get("username"))
	require.Equal(t, "secret", post.Get("password"))
	require.Equal(t, "LT-1", post.Get("lt"))
	require.Equal(t, "e1s1", post.Get("execution"))
	require.Equal(t, "submit", post.Get("_eventId"))
	require.NotContains(t, post, "unrelated")

	require.Equal(t, userAgent, portal.lastLoginHeader().Get("user-agent"))
	require.Equal(t, portal.url()+loginPath, portal.lastLoginHeader().Get("referer"))

	require.False(t, rec.Has("broken", report_client_login))
	require.False(t, rec.Has("warning", report_client_login))
}

func TestLoginRejected(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     []byte
		expected string
	}{
		{
			name:     "alert banner",
			status:   http.StatusUnauthorized,
			body:     loginRejectedHtml,
			expected: "Invalid credentials",
		},
		{
			name:     "alert outside the login form",
			status:   http.StatusUnauthorized,
			body:     loginRejectedNoAlertHtml,
			expected: "server returned 401",
		},
		{
			name:     "empty body",
			status:   http.StatusForbidden,
			expected: "server returned 403",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			portal := newFakePortal(t)
			portal.loginStatus = test.status
			portal.loginResponse = test.body
			rec := &telemetry.Recorder{}

			session, err := portal.newSession(t, rec).Login(context.Background(), "alice", "wrong")
			require.Nil(t, session)

			var loginErr *LoginError
			require.ErrorAs(t, err, &loginErr)
			require.Equal(t, test.expected, loginErr.Message)
			require.Equal(t, "cannot login: "+test.expected, err.Error())

			var transportErr *TransportError
			require.False(t, errors.As(err, &transportErr))

			require.True(t, rec.Has("warning", report_client_login))
			require.False(t, rec.Has("broken", report_client_login))
		})
	}
}

func TestLoginServerError(t *testing.T) {
	portal := newFakePortal(t)
	portal.loginStatus = http.StatusInternalServerError
	portal.loginResponse = loginRejectedHtml
	rec := &telemetry.Recorder{}

	_, err := portal.newSession(t, rec).Login(context.Background(), "alice", "secret")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)

	var loginErr *LoginError
	require.False(t, errors.As(err, &loginErr))
	require.True(t, rec.Has("broken", report_client_login))
}

func TestLoginPageUnavailable(t *testing.T) {
	portal := newFakePortal(t)
	portal.loginPageStatus = http.StatusServiceUnavailable

	_, err := portal.newSession(t, &telemetry.Recorder{}).Login(context.Background(), "alice", "secret")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	require.Empty(t, portal.logins())
}

func TestLoginPageWithoutForm(t *testing.T) {
	portal := newFakePortal(t)
	portal.loginPage = maintenanceHtml

	_, err := portal.newSession(t, &telemetry.Recorder{}).Login(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, ErrUnexpectedPage)
	require.Empty(t, portal.logins())
}

func TestLoginUnreachable(t *testing.T) {
	portal := newFakePortal(t)
	session := portal.newSession(t, &telemetry.Recorder{})
	portal.server.Close()

	_, err := session.Login(context.Background(), "alice", "secret")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Zero(t, transportErr.StatusCode)
	require.Error(t, transportErr.Err)
}

func TestLoginConsumesSession(t *testing.T) {
	portal := newFakePortal(t)
	portal.loginStatus = http.StatusUnauthorized
	portal.loginResponse = loginRejectedHtml
	session := portal.newSession(t, &telemetry.Recorder{})

	_, err := session.Login(context.Background(), "alice", "wrong")
	var loginErr *LoginError
	require.ErrorAs(t, err, &loginErr)

	_, err = session.Login(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, ErrSessionConsumed)
	require.Len(t, portal.logins(), 1)
}

func TestLoginCanceled(t *testing.T) {
	portal := newFakePortal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := portal.newSession(t, &telemetry.Recorder{}).Login(ctx, "alice", "secret")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewSessionRejectsBadUrl(t *testing.T) {
	_, err := NewSession(ClientOptions{CasBaseUrl: "://nope"})
	require.Error(t, err)

	_, err = NewSession(ClientOptions{PortalBaseUrl: "jwxt.sustech.edu.cn"})
	require.Error(t, err)
}
