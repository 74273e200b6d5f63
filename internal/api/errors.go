package api

import "fmt"

// DebugInfo carries the source location a script failure points at. The node
// omits fields it cannot determine; a zero DebugInfo means "no location".
type DebugInfo struct {
	Path        string `json:"path"`
	FirstLine   int    `json:"first_line"`
	FirstColumn int    `json:"first_column"`
	LastLine    int    `json:"last_line"`
	LastColumn  int    `json:"last_column"`
}

// IsZero reports whether no location information is present.
func (di DebugInfo) IsZero() bool {
	return di == DebugInfo{}
}

func (di DebugInfo) String() string {
	if di.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", di.Path, di.FirstLine, di.FirstColumn, di.LastLine, di.LastColumn)
}

// ScriptError is the domain-level failure reported by the node for a script
// evaluation or autocompletion attempt. For ExecuteScript it carries the
// source location and the incomplete-expression flag; for AutocompleteScript
// the node reports a message only.
type ScriptError struct {
	Message string

	// Debug locates the failure within the submitted fragment. Zero when the
	// node reported no debug_info.
	Debug DebugInfo

	// IncompleteExpression is set when the fragment is syntactically
	// unfinished. Interactive consoles use it to prompt for continuation
	// instead of reporting a hard error.
	IncompleteExpression bool
}

func (e *ScriptError) Error() string {
	return e.Message
}

// ConnectionError indicates the TCP connect or TLS handshake to the node
// did not complete.
type ConnectionError struct {
	Host string
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to console API on host '%s' port '%s': %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NetworkError indicates an I/O failure while sending the request or reading
// the response.
type NetworkError struct {
	Host string
	Port string
	Op   string // "write" or "read"
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed on host '%s' port '%s': %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError indicates the node answered with malformed HTTP framing.
type ProtocolError struct {
	Host string
	Port string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed HTTP response from host '%s' port '%s': %v", e.Host, e.Port, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ConfigurationError indicates the request could not be composed from the
// supplied connection parameters.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid console API request: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
