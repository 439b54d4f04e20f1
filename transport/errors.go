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

// Package transport opens the raw byte-stream (TCP) or datagram session
// (QUIC) that carries an egress attempt, under an absolute connect
// deadline.
package transport

import (
	liberr "github.com/nabbar/g3egress/errors"
)

const (
	// ErrorConnectTimeout is returned when the deadline is exceeded
	// before a connection is established.
	ErrorConnectTimeout liberr.CodeError = liberr.MinPkgTransport + iota + 1
	// ErrorConnectRefused is returned when the OS reports the peer
	// actively refused the connection.
	ErrorConnectRefused
	// ErrorConnectUnreachable is returned when the OS reports the
	// network or host is unreachable.
	ErrorConnectUnreachable
)

func init() {
	if !liberr.ExistInMapMessage(ErrorConnectTimeout) {
		liberr.RegisterIdFctMessage(ErrorConnectTimeout, getMessage)
	}
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorConnectTimeout:
		return "connect deadline exceeded"
	case ErrorConnectRefused:
		return "connection refused by peer"
	case ErrorConnectUnreachable:
		return "network or host unreachable"
	}

	return liberr.NullMessage
}
