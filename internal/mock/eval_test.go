package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchpost/consolectl/internal/api"
)

func TestEvalLiteral(t *testing.T) {
	s := NewServer("root", "secret")

	entry := s.eval("sess", "7", false)
	assert.Equal(t, 200, entry.Code)
	assert.JSONEq(t, "7", string(entry.Result))

	entry = s.eval("sess", `["a", "b"]`, false)
	assert.Equal(t, 200, entry.Code)
	assert.JSONEq(t, `["a","b"]`, string(entry.Result))
}

func TestEvalEmptyCommand(t *testing.T) {
	s := NewServer("root", "secret")

	entry := s.eval("sess", "   ", false)
	assert.Equal(t, 200, entry.Code)
	assert.JSONEq(t, "null", string(entry.Result))
}

func TestEvalSyntaxError(t *testing.T) {
	s := NewServer("root", "secret")

	entry := s.eval("sess", "1 +", false)
	assert.Equal(t, 500, entry.Code)
	assert.Equal(t, "Error: syntax error.", entry.Status)
	require.NotNil(t, entry.DebugInfo)
}

func TestEvalMultilineLocation(t *testing.T) {
	s := NewServer("root", "secret")

	entry := s.eval("sess", "\nmissing", false)
	require.Equal(t, 500, entry.Code)
	assert.Equal(t, "Error: variable 'missing' is not defined.", entry.Status)
	require.NotNil(t, entry.DebugInfo)
	assert.Equal(t, 2, entry.DebugInfo.FirstLine)
	assert.Equal(t, 1, entry.DebugInfo.FirstColumn)
}

func TestSplitAssignment(t *testing.T) {
	name, expr, ok := splitAssignment("x = 1")
	require.True(t, ok)
	assert.Equal(t, "x", name)
	assert.Equal(t, "1", expr)

	_, _, ok = splitAssignment("x == 1")
	assert.False(t, ok)

	_, _, ok = splitAssignment("= 1")
	assert.False(t, ok)

	_, _, ok = splitAssignment("x =")
	assert.False(t, ok)

	_, _, ok = splitAssignment(`1x = 2`)
	assert.False(t, ok)
}

func TestOpenDelimiters(t *testing.T) {
	assert.True(t, openDelimiters("(1 + 2"))
	assert.True(t, openDelimiters(`"unterminated`))
	assert.True(t, openDelimiters("[1, {"))
	assert.False(t, openDelimiters("(1 + 2)"))
	assert.False(t, openDelimiters(`"quoted )("`))
	assert.False(t, openDelimiters(`"esc \" ok"`))
}

func TestTrailingIdentifier(t *testing.T) {
	assert.Equal(t, "ho", trailingIdentifier("x = ho"))
	assert.Equal(t, "host_1", trailingIdentifier("host_1"))
	assert.Equal(t, "", trailingIdentifier("x + "))
	assert.Equal(t, "", trailingIdentifier(""))
}

func TestLocationSpansToken(t *testing.T) {
	di := location("abc def", "def")
	assert.Equal(t, &api.DebugInfo{
		Path:        "<console>",
		FirstLine:   1,
		FirstColumn: 5,
		LastLine:    1,
		LastColumn:  7,
	}, di)
}
