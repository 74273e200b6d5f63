// Command consolectl is a remote console for a monitoring node's scripting
// API.
//
// Usage:
//
//	consolectl console               # interactive session
//	consolectl eval 'x = 42'         # one-shot evaluation
//	consolectl complete 'ho'         # autocompletion suggestions
//	consolectl mock-serve            # local mock node for development
//
// Connection parameters come from --host/--port/--user/--password or the
// CONSOLECTL_* environment variables.
package main

import "github.com/watchpost/consolectl/internal/cli"

func main() {
	cli.Execute()
}
