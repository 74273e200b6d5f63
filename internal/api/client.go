// Package api implements the client side of a monitoring node's /v1/console
// HTTPS API.
//
// The console API evaluates script fragments in a server-side session and
// offers autocompletion for partial fragments. Every call is a single
// synchronous sequence: open a TLS connection, send one POST request, read
// one response, decode the result envelope, close the connection. The client
// keeps no state between calls beyond its immutable connection parameters,
// so one ApiClient may be used from any number of goroutines.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"

	"github.com/rs/zerolog/log"
)

// ApiClient talks to one monitoring node. All fields are fixed at
// construction; methods never mutate the client.
type ApiClient struct {
	host      string
	port      string
	user      string
	password  string
	tlsConfig *tls.Config
}

// NewApiClient returns a client for the node at host:port authenticating
// with HTTP Basic credentials. Server certificates are verified against the
// system roots; use NewApiClientTLS for nodes with private CAs or client
// certificates.
func NewApiClient(host, port, user, password string) *ApiClient {
	return NewApiClientTLS(host, port, user, password, nil)
}

// NewApiClientTLS is NewApiClient with an explicit TLS configuration.
func NewApiClientTLS(host, port, user, password string, tlsConfig *tls.Config) *ApiClient {
	return &ApiClient{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		tlsConfig: tlsConfig,
	}
}

// connect opens the TLS channel to the node. The handshake is part of the
// dial; there is no partially-connected state.
func (c *ApiClient) connect(ctx context.Context) (net.Conn, error) {
	dialer := &tls.Dialer{Config: c.tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(c.host, c.port))
	if err != nil {
		log.Warn().
			Str("host", c.host).
			Str("port", c.port).
			Err(err).
			Msg("Can't connect to console API")
		return nil, &ConnectionError{Host: c.host, Port: c.port, Err: err}
	}
	return conn, nil
}

// ExecuteScript submits a script fragment for evaluation in the given
// session and returns the raw JSON result value, which may itself be null.
//
// Soft failures (incomplete response, non-2xx status, undecodable body,
// empty envelope) are logged and return a nil value with a nil error. A
// failure entry in the envelope is returned as a *ScriptError carrying the
// source location and the incomplete-expression flag.
func (c *ApiClient) ExecuteScript(ctx context.Context, session, command string, sandboxed bool) (json.RawMessage, error) {
	req, err := c.buildScriptRequest(opExecute, session, command, sandboxed)
	if err != nil {
		return nil, err
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := c.collect(conn, req)
	if err != nil {
		return nil, err
	}

	out := c.decodeExecute(resp)
	if out.scriptErr != nil {
		return nil, out.scriptErr
	}
	return out.value, nil
}

// AutocompleteScript requests completion suggestions for a partial fragment
// and returns them in server order, or nil on a soft failure.
//
// Unlike ExecuteScript, a non-2xx HTTP status raises a *ScriptError here,
// and failure entries translate to a *ScriptError with a message only.
// Existing servers rely on this asymmetry.
func (c *ApiClient) AutocompleteScript(ctx context.Context, session, command string, sandboxed bool) ([]string, error) {
	req, err := c.buildScriptRequest(opAutocomplete, session, command, sandboxed)
	if err != nil {
		return nil, err
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := c.collect(conn, req)
	if err != nil {
		return nil, err
	}

	out := c.decodeAutocomplete(resp)
	if out.scriptErr != nil {
		return nil, out.scriptErr
	}
	return out.suggestions, nil
}
