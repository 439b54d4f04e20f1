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

package tlsengine_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/nabbar/g3egress/certificates"
	"github.com/nabbar/g3egress/duration"
	"github.com/nabbar/g3egress/tlsengine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func selfSignedPair(host string) (certPEM string, keyPEM string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).ToNot(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).ToNot(HaveOccurred())

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	kb, err := x509.MarshalECPrivateKey(key)
	Expect(err).ToNot(HaveOccurred())
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: kb}))

	return certPEM, keyPEM
}

var _ = Describe("Handshake", func() {
	It("succeeds against a server presenting a trusted certificate", func() {
		certPEM, keyPEM := selfSignedPair("upstream.example")
		cert, err := tls.X509KeyPair([]byte(certPEM), []byte(keyPEM))
		Expect(err).ToNot(HaveOccurred())

		client, server := net.Pipe()
		go func() {
			sc := tls.Server(server, &tls.Config{Certificates: []tls.Certificate{cert}})
			_ = sc.Handshake()
			_ = sc.Close()
		}()

		tc := certificates.New()
		Expect(tc.AddRootCAString(certPEM)).To(BeTrue())

		cfg := &tlsengine.TlsClientConfig{
			Certs:            tc,
			HandshakeTimeout: duration.Seconds(2),
		}

		conn, herr := tlsengine.Handshake(context.Background(), client, cfg, "upstream.example")
		Expect(herr).To(BeNil())
		Expect(conn).ToNot(BeNil())
		_ = conn.Close()
	})

	It("times out and closes the socket when the peer never responds", func() {
		client, server := net.Pipe()
		defer func() { _ = server.Close() }()

		cfg := &tlsengine.TlsClientConfig{
			Certs:            certificates.New(),
			HandshakeTimeout: duration.ParseDuration(50 * time.Millisecond),
		}

		start := time.Now()
		_, herr := tlsengine.Handshake(context.Background(), client, cfg, "upstream.example")
		elapsed := time.Since(start)

		Expect(herr).ToNot(BeNil())
		Expect(herr.HasCode(tlsengine.ErrorHandshakeTimeout)).To(BeTrue())
		Expect(elapsed).To(BeNumerically("<", 2*time.Second))

		n, err := client.Write([]byte("x"))
		Expect(n).To(Equal(0))
		Expect(err).To(HaveOccurred())
	})

	It("rejects a nil configuration as an internal config error", func() {
		client, server := net.Pipe()
		defer func() { _ = server.Close() }()

		_, herr := tlsengine.Handshake(context.Background(), client, nil, "upstream.example")
		Expect(herr).ToNot(BeNil())
		Expect(herr.HasCode(tlsengine.ErrorInternalConfig)).To(BeTrue())
	})
})
