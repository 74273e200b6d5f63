// Package console implements the interactive console against a monitoring
// node's scripting API.
//
// Each line is submitted through the client as one script fragment. When the
// node reports an incomplete expression the console buffers the fragment and
// keeps prompting for continuation lines until the expression parses, the
// way a local REPL would.
package console

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/watchpost/consolectl/internal/api"
)

const (
	prompt             = "=> "
	continuationPrompt = ".. "
)

// Console drives one interactive session against a node.
type Console struct {
	client    *api.ApiClient
	session   string
	sandboxed bool
}

// New returns a console with a fresh session id.
func New(client *api.ApiClient, sandboxed bool) *Console {
	return &Console{
		client:    client,
		session:   NewSessionID(),
		sandboxed: sandboxed,
	}
}

// NewSessionID generates a random session identifier. The node scopes
// variables to the session, so every console run starts clean.
func NewSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b[:])
}

// Run reads lines until EOF or ctx cancellation. Script errors are printed
// and the loop continues; only terminal or I/O problems end the console.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), "consolectl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &remoteCompleter{console: c, ctx: ctx},
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go closeOnCancel(ctx, done, rl)

	var pending []string
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			pending = pending[:0]
			rl.SetPrompt(prompt)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if len(pending) == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if trimmed == "exit" {
				return nil
			}
		}

		pending = append(pending, line)
		fragment := strings.Join(pending, "\n")

		result, err := c.client.ExecuteScript(ctx, c.session, fragment, c.sandboxed)

		var scriptErr *api.ScriptError
		switch {
		case errors.As(err, &scriptErr):
			if scriptErr.IncompleteExpression {
				rl.SetPrompt(continuationPrompt)
				continue
			}
			printScriptError(rl.Stderr(), scriptErr)
		case err != nil:
			// Connection and network faults keep the console alive; the
			// next line simply retries against a fresh connection.
			log.Warn().Err(err).Msg("Console call failed")
		default:
			printResult(rl.Stdout(), result)
		}

		pending = pending[:0]
		rl.SetPrompt(prompt)
	}
}

func printResult(w io.Writer, result json.RawMessage) {
	if len(result) == 0 {
		fmt.Fprintln(w, "<no answer>")
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Fprintln(w, string(result))
		return
	}
	fmt.Fprintln(w, pretty.String())
}

func printScriptError(w io.Writer, scriptErr *api.ScriptError) {
	if scriptErr.Debug.IsZero() {
		fmt.Fprintln(w, scriptErr.Message)
		return
	}
	fmt.Fprintf(w, "%s\n  at %s\n", scriptErr.Message, scriptErr.Debug)
}

// closeOnCancel closes c when ctx is cancelled, unblocking a pending
// Readline. Closing done ends the watch without touching c, so a finished
// Run does not leak the goroutine or race its own deferred Close.
func closeOnCancel(ctx context.Context, done <-chan struct{}, c io.Closer) {
	select {
	case <-ctx.Done():
		c.Close()
	case <-done:
	}
}

// remoteCompleter implements readline.AutoCompleter on top of the node's
// auto-complete-script endpoint.
type remoteCompleter struct {
	console *Console
	ctx     context.Context
}

func (rc *remoteCompleter) Do(line []rune, pos int) ([][]rune, int) {
	fragment := string(line[:pos])
	word := trailingWord(fragment)

	suggestions, err := rc.console.client.AutocompleteScript(rc.ctx, rc.console.session, fragment, rc.console.sandboxed)
	if err != nil {
		return nil, 0
	}

	var candidates [][]rune
	for _, s := range suggestions {
		if strings.HasPrefix(s, word) {
			candidates = append(candidates, []rune(s[len(word):]))
		}
	}
	return candidates, len([]rune(word))
}

// trailingWord returns the identifier being typed at the end of fragment.
func trailingWord(fragment string) string {
	start := len(fragment)
	for start > 0 {
		r := fragment[start-1]
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			start--
			continue
		}
		break
	}
	return fragment[start:]
}
