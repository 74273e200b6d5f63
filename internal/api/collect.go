package api

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
)

// apiResponse is the collected answer for one call. A response that never
// reached completion has Complete unset and must not be interpreted as
// success or failure; it is a distinct "no answer" outcome.
type apiResponse struct {
	StatusCode int
	Complete   bool
	Body       []byte
}

// collect writes the request to the stream and reads the response until it is
// complete or the stream ends. Request bytes are fully written before any
// read begins.
//
// A stream that ends before the response is complete yields an incomplete
// apiResponse, not an error; I/O faults become NetworkError and malformed
// framing becomes ProtocolError.
func (c *ApiClient) collect(conn net.Conn, req *http.Request) (*apiResponse, error) {
	if err := req.Write(conn); err != nil {
		log.Warn().
			Str("host", c.host).
			Str("port", c.port).
			Err(err).
			Msg("Cannot write to TCP socket")
		return nil, &NetworkError{Host: c.host, Port: c.port, Op: "write", Err: err}
	}

	// textproto can mask a stream EOF behind a parse error when the peer
	// closes mid-header, so track EOF on the raw stream ourselves.
	tracked := &eofTrackingReader{r: conn}
	resp, err := http.ReadResponse(bufio.NewReader(tracked), req)
	if err != nil {
		if isTruncated(err) || tracked.sawEOF {
			log.Warn().
				Str("host", c.host).
				Str("port", c.port).
				Msg("Failed to read a complete HTTP response from the server")
			return &apiResponse{}, nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			log.Warn().
				Str("host", c.host).
				Str("port", c.port).
				Err(err).
				Msg("Failed to read HTTP response")
			return nil, &NetworkError{Host: c.host, Port: c.port, Op: "read", Err: err}
		}
		log.Warn().
			Str("host", c.host).
			Str("port", c.port).
			Err(err).
			Msg("Failed to parse HTTP response")
		return nil, &ProtocolError{Host: c.host, Port: c.port, Err: err}
	}
	defer resp.Body.Close()

	// The body is bounded by the declared Content-Length; nothing is read
	// beyond it.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTruncated(err) {
			log.Warn().
				Str("host", c.host).
				Str("port", c.port).
				Msg("Failed to read a complete HTTP response from the server")
			return &apiResponse{StatusCode: resp.StatusCode}, nil
		}
		log.Warn().
			Str("host", c.host).
			Str("port", c.port).
			Err(err).
			Msg("Failed to read HTTP response body")
		return nil, &NetworkError{Host: c.host, Port: c.port, Op: "read", Err: err}
	}

	return &apiResponse{
		StatusCode: resp.StatusCode,
		Complete:   true,
		Body:       body,
	}, nil
}

func isTruncated(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// eofTrackingReader records whether the underlying stream ended, so a parse
// failure can be told apart from a truncated response.
type eofTrackingReader struct {
	r      io.Reader
	sawEOF bool
}

func (t *eofTrackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if errors.Is(err, io.EOF) {
		t.sawEOF = true
	}
	return n, err
}
