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

package main

import (
	"fmt"
	"net"
	"net/url"
	"time"

	libdur "github.com/nabbar/g3egress/duration"
)

// benchArgs holds the parsed and validated command line surface of the
// h3 benchmark client. Field names mirror the flag names they come
// from, not the wire/protocol vocabulary.
type benchArgs struct {
	targetURL      *url.URL
	host           string
	port           int
	method         string
	localAddress   net.IP
	poolSize       int
	noMultiplex    bool
	okStatus       int
	timeout        time.Duration
	connectTimeout time.Duration
}

const (
	defaultH3Port  = 443
	defaultTimeout = "30s"
	defaultConnect = "15s"
)

// newBenchArgs validates the raw flag values gathered by the cobra
// command and resolves them into a benchArgs ready for execution. Every
// rejection here is an argument error (exit code 1), never a network
// one.
func newBenchArgs(rawURI, rawMethod, rawLocalAddr string, poolSize int, noMultiplex bool, rawOkStatus, rawTimeout, rawConnectTimeout string) (*benchArgs, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, errorInvalidURI.Error(err)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return nil, errorUnsupportedScheme.Error(fmt.Errorf("%s", u.String()))
	}

	host := u.Hostname()
	if host == "" {
		return nil, errorInvalidURI.Error(fmt.Errorf("missing host"))
	}

	port := defaultH3Port
	if p := u.Port(); p != "" {
		if _, err = fmt.Sscanf(p, "%d", &port); err != nil {
			return nil, errorInvalidURI.Error(err)
		}
	}

	a := &benchArgs{
		targetURL: u,
		host:      host,
		port:      port,
	}

	switch rawMethod {
	case "", "GET":
		a.method = "GET"
	case "HEAD":
		a.method = "HEAD"
	default:
		return nil, errorInvalidMethod.Error(fmt.Errorf("%q", rawMethod))
	}

	if rawLocalAddr != "" {
		ip := net.ParseIP(rawLocalAddr)
		if ip == nil {
			return nil, errorInvalidLocalAddress.Error(fmt.Errorf("%q", rawLocalAddr))
		}
		a.localAddress = ip
	}

	if poolSize > 0 && noMultiplex {
		return nil, errorMutuallyExclusiveFlags.Error(nil)
	}
	if poolSize > 0 {
		a.poolSize = poolSize
	}
	a.noMultiplex = noMultiplex

	if rawOkStatus != "" {
		if _, err = fmt.Sscanf(rawOkStatus, "%d", &a.okStatus); err != nil || a.okStatus < 100 || a.okStatus > 599 {
			return nil, errorInvalidOkStatus.Error(fmt.Errorf("%q", rawOkStatus))
		}
	}

	if rawTimeout == "" {
		rawTimeout = defaultTimeout
	}
	d, err := libdur.Parse(rawTimeout)
	if err != nil {
		return nil, errorInvalidDuration.Error(err)
	}
	a.timeout = d.Time()

	if rawConnectTimeout == "" {
		rawConnectTimeout = defaultConnect
	}
	d, err = libdur.Parse(rawConnectTimeout)
	if err != nil {
		return nil, errorInvalidDuration.Error(err)
	}
	a.connectTimeout = d.Time()

	return a, nil
}

// acceptStatus reports whether code counts as success for this run.
func (a *benchArgs) acceptStatus(code int) bool {
	if a.okStatus != 0 {
		return code == a.okStatus
	}
	return code >= 200 && code < 300
}

// requestCount is how many h3 requests this run issues: one per pooled
// connection, or a single request when pooling is not requested.
func (a *benchArgs) requestCount() int {
	if a.poolSize > 1 {
		return a.poolSize
	}
	return 1
}
