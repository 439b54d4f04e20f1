/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package httpconnect

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	liberr "github.com/nabbar/g3egress/errors"
)

const defaultMaxHeaderBytes = 4096

// Options configures a single CONNECT negotiation.
type Options struct {
	// Host and Port identify the tunneled upstream, used both in the
	// request line and the Host header.
	Host string
	Port int

	// User/Pass are sent as Proxy-Authorization: Basic when
	// PassProxyUserID is true and User is non-empty.
	User            string
	Pass            string
	PassProxyUserID bool

	// AppendHeaders are raw "Key: Value" lines inserted verbatim after
	// the standard headers. Callers MUST have already rejected CR/LF
	// injection; this package does not re-validate them.
	AppendHeaders []string

	// MaxHeaderBytes caps the response header block size; 0 selects the
	// 4 KiB default.
	MaxHeaderBytes int

	// AcceptStatus overrides the accepted-status predicate. When nil,
	// any 2xx status succeeds. Supplying a single fixed status is how a
	// benchmark client can require an exact code instead of the 2xx
	// range; the proxy egress path never sets this.
	AcceptStatus func(status int) bool
}

// Result carries the outcome of a successful (or rejected) negotiation.
type Result struct {
	// StatusCode is always populated, success or rejection.
	StatusCode int

	// Residual holds bytes the peer already sent past the blank line
	// terminating the response headers. Callers MUST hand this buffer,
	// unmodified, to whatever reads the tunneled stream next (see
	// stats.NewReader), rather than discarding it.
	Residual []byte
}

func capOf(o Options) int {
	if o.MaxHeaderBytes > 0 {
		return o.MaxHeaderBytes
	}
	return defaultMaxHeaderBytes
}

func accepts(o Options, status int) bool {
	if o.AcceptStatus != nil {
		return o.AcceptStatus(status)
	}
	return status >= 200 && status < 300
}

// Negotiate sends a CONNECT request for opts.Host:opts.Port over rw and
// parses the response. On success, Result.Residual carries any bytes
// already buffered past the header block. On rejection, the returned
// Result is still populated with StatusCode so the caller can build a
// phase-tagged error; the connection must be closed by the caller in
// that case.
func Negotiate(rw io.ReadWriter, opts Options) (*Result, liberr.Error) {
	if err := writeRequest(rw, opts); err != nil {
		return nil, ErrorNegotiationWriteFailed.Error(err)
	}

	br := bufio.NewReaderSize(rw, capOf(opts))

	status, rerr := readStatusAndHeaders(br, capOf(opts))
	if rerr != nil {
		return nil, rerr
	}

	res := &Result{StatusCode: status}

	if n := br.Buffered(); n > 0 {
		b, _ := br.Peek(n)
		res.Residual = append([]byte(nil), b...)
	}

	if !accepts(opts, status) {
		res.Residual = nil
		return res, ErrorNegotiationRejected.Errorf(status)
	}

	return res, nil
}

func writeRequest(w io.Writer, o Options) error {
	target := fmt.Sprintf("%s:%d", o.Host, o.Port)

	b := &strings.Builder{}
	b.WriteString("CONNECT " + target + " HTTP/1.1\r\n")
	b.WriteString("Host: " + target + "\r\n")

	if o.PassProxyUserID && o.User != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(o.User + ":" + o.Pass))
		b.WriteString("Proxy-Authorization: Basic " + cred + "\r\n")
	}

	for _, h := range o.AppendHeaders {
		b.WriteString(h + "\r\n")
	}

	b.WriteString("\r\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// readStatusAndHeaders consumes the status line and header block up to
// the blank line, enforcing the byte cap, and returns the status code.
// Any bytes read past the blank line remain buffered in br.
func readStatusAndHeaders(br *bufio.Reader, max int) (int, liberr.Error) {
	var total int

	line, err := readCappedLine(br, max, &total)
	if err != nil {
		return 0, err
	}

	status, serr := parseStatusLine(line)
	if serr != nil {
		return 0, serr
	}

	for {
		line, err = readCappedLine(br, max, &total)
		if err != nil {
			return 0, err
		}
		if len(line) == 0 {
			break
		}
	}

	return status, nil
}

// readCappedLine reads one CRLF-terminated line (the trailing CRLF
// stripped) a byte at a time, erroring the moment the cumulative byte
// count would exceed max rather than after the fact: bufio.Reader's own
// ReadString('\n') has no such ceiling and will buffer an unbounded
// line in memory waiting for a terminator that may never come.
func readCappedLine(br *bufio.Reader, max int, total *int) (string, liberr.Error) {
	var line []byte

	for {
		if *total >= max {
			return "", ErrorNegotiationProtocolError.Error(nil)
		}

		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return "", ErrorNegotiationReadFailed.Error(nil)
			}
			return "", ErrorNegotiationReadFailed.Error(err)
		}

		*total++
		line = append(line, b)

		if b == '\n' {
			break
		}
	}

	return strings.TrimRight(string(line), "\r\n"), nil
}

func parseStatusLine(line string) (int, liberr.Error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, ErrorNegotiationProtocolError.Error(nil)
	}

	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrorNegotiationProtocolError.Error(err)
	}

	return status, nil
}
