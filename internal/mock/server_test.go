package mock_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchpost/consolectl/internal/api"
	"github.com/watchpost/consolectl/internal/mock"
)

// startMockNode serves the mock console API over TLS and returns a client
// authenticated with the given credentials.
func startMockNode(t *testing.T, user, password string) *api.ApiClient {
	t.Helper()

	e := echo.New()
	e.HideBanner = true
	s := mock.NewServer("root", "secret")
	s.RegisterRoutes(e)

	srv := httptest.NewTLSServer(e)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	return api.NewApiClientTLS(host, port, user, password, &tls.Config{
		InsecureSkipVerify: true,
	})
}

func TestAssignAndLookup(t *testing.T) {
	c := startMockNode(t, "root", "secret")
	ctx := context.Background()

	result, err := c.ExecuteScript(ctx, "sess1", "x = 42", false)
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(result))

	result, err = c.ExecuteScript(ctx, "sess1", "x", false)
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(result))
}

func TestSessionsAreIsolated(t *testing.T) {
	c := startMockNode(t, "root", "secret")
	ctx := context.Background()

	_, err := c.ExecuteScript(ctx, "sess-a", `greeting = "hi"`, false)
	require.NoError(t, err)

	_, err = c.ExecuteScript(ctx, "sess-b", "greeting", false)
	require.Error(t, err)

	var scriptErr *api.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "Error: variable 'greeting' is not defined.", scriptErr.Message)
}

func TestUndefinedVariableCarriesLocation(t *testing.T) {
	c := startMockNode(t, "root", "secret")

	_, err := c.ExecuteScript(context.Background(), "s", "nosuchvar", false)
	require.Error(t, err)

	var scriptErr *api.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "<console>", scriptErr.Debug.Path)
	assert.Equal(t, 1, scriptErr.Debug.FirstLine)
	assert.Equal(t, 1, scriptErr.Debug.FirstColumn)
	assert.False(t, scriptErr.IncompleteExpression)
}

func TestIncompleteExpression(t *testing.T) {
	c := startMockNode(t, "root", "secret")

	_, err := c.ExecuteScript(context.Background(), "s", "x = [1, 2", false)
	require.Error(t, err)

	var scriptErr *api.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.True(t, scriptErr.IncompleteExpression)
}

func TestSandboxedRejectsAssignment(t *testing.T) {
	c := startMockNode(t, "root", "secret")

	_, err := c.ExecuteScript(context.Background(), "s", "x = 1", true)
	require.Error(t, err)

	var scriptErr *api.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, scriptErr.Message, "sandboxed")
}

func TestAutocomplete(t *testing.T) {
	c := startMockNode(t, "root", "secret")
	ctx := context.Background()

	_, err := c.ExecuteScript(ctx, "sess1", "trace = 1", false)
	require.NoError(t, err)

	suggestions, err := c.AutocompleteScript(ctx, "sess1", "tr", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"trace", "true"}, suggestions)
}

func TestBadCredentials(t *testing.T) {
	c := startMockNode(t, "root", "wrong")
	ctx := context.Background()

	// Execute swallows the 401 as a soft failure, autocomplete raises.
	result, err := c.ExecuteScript(ctx, "s", "1", false)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = c.AutocompleteScript(ctx, "s", "1", false)
	require.Error(t, err)

	var scriptErr *api.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, scriptErr.Message, "Code: 401")
}
