package api

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedConn serves canned response bytes and can be told to fail writes.
type scriptedConn struct {
	reader   io.Reader
	writeErr error
}

func (c *scriptedConn) Read(p []byte) (int, error) { return c.reader.Read(p) }

func (c *scriptedConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return len(p), nil
}

func (c *scriptedConn) Close() error                     { return nil }
func (c *scriptedConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (c *scriptedConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (c *scriptedConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptedConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

func collectWith(t *testing.T, conn net.Conn) (*apiResponse, error) {
	t.Helper()

	c := testClient()
	req, err := c.buildScriptRequest(opExecute, "s", "cmd", false)
	require.NoError(t, err)
	return c.collect(conn, req)
}

func TestCollectWriteFailure(t *testing.T) {
	conn := &scriptedConn{
		reader:   strings.NewReader(""),
		writeErr: errors.New("broken pipe"),
	}

	_, err := collectWith(t, conn)
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "write", netErr.Op)
	assert.Equal(t, "node1", netErr.Host)
	assert.Equal(t, "5665", netErr.Port)
}

func TestCollectMalformedFramingOnLiveStream(t *testing.T) {
	// A garbage status line on a stream that has not ended is a protocol
	// fault, not a truncated response.
	conn := &scriptedConn{reader: strings.NewReader("BOGUS STATUS LINE\r\n\r\n")}

	_, err := collectWith(t, conn)
	require.Error(t, err)

	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, "node1", protoErr.Host)
}

func TestCollectStreamEndsMidHeaderLine(t *testing.T) {
	// The peer closing in the middle of a header line surfaces from the
	// parser as a malformed-header error, not an EOF; it must still count
	// as "no answer" rather than raise.
	conn := &scriptedConn{reader: strings.NewReader("HTTP/1.1 200 OK\r\nContent-Ty")}

	resp, err := collectWith(t, conn)
	require.NoError(t, err)
	assert.False(t, resp.Complete)
}

func TestCollectStreamEndsMidStatusLine(t *testing.T) {
	conn := &scriptedConn{reader: strings.NewReader("HTTP/1.1 2")}

	resp, err := collectWith(t, conn)
	require.NoError(t, err)
	assert.False(t, resp.Complete)
}
