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
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("root command flag parsing", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("rejects --connection-pool together with --no-multiplex before dialing anything", func() {
		cmd := newRootCommand(out)
		cmd.SetArgs([]string{"--connection-pool", "8", "--no-multiplex", "https://upstream.invalid/"})
		cmd.SetOut(out)
		cmd.SetErr(out)

		err := cmd.Execute()
		Expect(err).To(HaveOccurred())

		var ee *exitError
		Expect(errors.As(err, &ee)).To(BeFalse(), "a flag-parse rejection must not reach runBench and be wrapped as a network error")
	})

	It("requires exactly one positional uri argument", func() {
		cmd := newRootCommand(out)
		cmd.SetArgs([]string{})
		cmd.SetOut(out)
		cmd.SetErr(out)

		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("rejects an invalid uri before any network activity, reporting it as an argument error", func() {
		cmd := newRootCommand(out)
		cmd.SetArgs([]string{"ftp://nope/"})
		cmd.SetOut(out)
		cmd.SetErr(out)

		err := cmd.Execute()
		Expect(err).To(HaveOccurred())

		var ee *exitError
		Expect(errors.As(err, &ee)).To(BeTrue())
		Expect(ee.code).To(Equal(1))
	})
})
