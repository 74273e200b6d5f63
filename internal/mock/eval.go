package mock

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/watchpost/consolectl/internal/api"
)

// builtins are names the evaluator always knows, used for autocompletion.
var builtins = []string{"false", "null", "true"}

// eval runs one command in a session and produces the result entry for it.
//
// The language is deliberately tiny: JSON literals evaluate to themselves,
// bare identifiers look up session variables, and `name = expr` assigns.
// Unbalanced delimiters or quotes report an incomplete expression so console
// clients can prompt for continuation.
func (s *Server) eval(session, command string, sandboxed bool) api.ResultEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return successEntry(json.RawMessage("null"))
	}

	if openDelimiters(trimmed) {
		return api.ResultEntry{
			Status:               "Incomplete expression.",
			Code:                 500,
			DebugInfo:            location(command, trimmed),
			IncompleteExpression: true,
		}
	}

	vars := s.varsLocked(session)

	if name, expr, ok := splitAssignment(trimmed); ok {
		if sandboxed {
			return failureEntry("Error: assignments are not allowed in sandboxed mode.", location(command, trimmed))
		}
		value, entry, ok := evalExpression(vars, command, expr)
		if !ok {
			return entry
		}
		vars[name] = string(value)
		return successEntry(value)
	}

	value, entry, ok := evalExpression(vars, command, trimmed)
	if !ok {
		return entry
	}
	return successEntry(value)
}

// complete suggests completions for the trailing identifier of command.
func (s *Server) complete(session, command string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := trailingIdentifier(command)

	names := append([]string(nil), builtins...)
	for name := range s.varsLocked(session) {
		names = append(names, name)
	}
	sort.Strings(names)

	var suggestions []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

func evalExpression(vars map[string]string, command, expr string) (json.RawMessage, api.ResultEntry, bool) {
	if json.Valid([]byte(expr)) {
		return json.RawMessage(expr), api.ResultEntry{}, true
	}

	if isIdentifier(expr) {
		value, ok := vars[expr]
		if !ok {
			message := fmt.Sprintf("Error: variable '%s' is not defined.", expr)
			return nil, failureEntry(message, location(command, expr)), false
		}
		return json.RawMessage(value), api.ResultEntry{}, true
	}

	return nil, failureEntry("Error: syntax error.", location(command, expr)), false
}

func successEntry(value json.RawMessage) api.ResultEntry {
	return api.ResultEntry{
		Status: "Executed successfully.",
		Code:   200,
		Result: value,
	}
}

func failureEntry(message string, di *api.DebugInfo) api.ResultEntry {
	return api.ResultEntry{
		Status:    message,
		Code:      500,
		DebugInfo: di,
	}
}

// splitAssignment recognizes `name = expr`, rejecting `==` comparisons.
func splitAssignment(s string) (name, expr string, ok bool) {
	idx := strings.Index(s, "=")
	if idx <= 0 || idx == len(s)-1 || s[idx+1] == '=' {
		return "", "", false
	}
	name = strings.TrimSpace(s[:idx])
	expr = strings.TrimSpace(s[idx+1:])
	if !isIdentifier(name) || expr == "" {
		return "", "", false
	}
	return name, expr, true
}

// openDelimiters reports unbalanced brackets or an unterminated string.
func openDelimiters(s string) bool {
	depth := 0
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth > 0 || inString
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// trailingIdentifier extracts the identifier being typed at the end of a
// fragment, or "" when the fragment ends mid-expression.
func trailingIdentifier(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		r := s[start-1]
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			start--
			continue
		}
		break
	}
	return s[start:end]
}

// location points DebugInfo at the first occurrence of token in command,
// using 1-based lines and columns.
func location(command, token string) *api.DebugInfo {
	offset := strings.Index(command, token)
	if offset < 0 {
		offset = 0
		token = command
	}

	line, column := 1, 1
	for _, r := range command[:offset] {
		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	lastLine, lastColumn := line, column
	for _, r := range token {
		if r == '\n' {
			lastLine++
			lastColumn = 1
		} else {
			lastColumn++
		}
	}

	return &api.DebugInfo{
		Path:        "<console>",
		FirstLine:   line,
		FirstColumn: column,
		LastLine:    lastLine,
		LastColumn:  lastColumn - 1,
	}
}
