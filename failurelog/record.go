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

// Package failurelog emits one structured record per upstream connect
// failure, correlated with task identity and the TLS leg that failed.
package failurelog

// TlsApplication tags which leg of a connect flow a TLS record belongs
// to, letting the same upstream host appear twice in a two-hop CONNECT
// flow without ambiguity.
type TlsApplication string

const (
	ProxyLeg  TlsApplication = "ProxyLeg"
	OriginLeg TlsApplication = "OriginLeg"
	TcpStream TlsApplication = "TcpStream"
)

// Record is one failure record. The logger emits it with the keys task_id,
// upstream, tls_peer, tls_name, tls_application and phase, and Reason as the
// entry's error.
type Record struct {
	TaskID      string
	Upstream    string
	TlsPeer     string
	TlsName     string
	Application TlsApplication
	Phase       string
	Reason      error
}
