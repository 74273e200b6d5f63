package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// operation selects the console endpoint a request targets.
type operation string

const (
	opExecute      operation = "execute-script"
	opAutocomplete operation = "auto-complete-script"
)

// buildScriptRequest composes the POST request for a console operation.
//
// The wire contract is fixed: the script travels in the query string, never in
// the body (the body is always zero-length), the sandboxed flag renders as the
// literal "1" or "0", and the parameters appear in the order session, command,
// sandboxed. Servers depend on this shape; do not normalize it.
func (c *ApiClient) buildScriptRequest(op operation, session, command string, sandboxed bool) (*http.Request, error) {
	sandboxedFlag := "0"
	if sandboxed {
		sandboxedFlag = "1"
	}

	query := make([]string, 0, 3)
	for _, kv := range [][2]string{
		{"session", session},
		{"command", command},
		{"sandboxed", sandboxedFlag},
	} {
		query = append(query, kv[0]+"="+url.QueryEscape(kv[1]))
	}

	u := url.URL{
		Scheme:   "https",
		Host:     net.JoinHostPort(c.host, c.port),
		Path:     "/v1/console/" + string(op),
		RawQuery: strings.Join(query, "&"),
	}

	req, err := http.NewRequest(http.MethodPost, u.String(), strings.NewReader(""))
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")

	return req, nil
}
