// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errcmp contains helpers for checking error conditions in tests.
package errcmp

import (
	"errors"
	"strings"
	"testing"
)

// MustMatch fails the test if err does not contain want. An empty want means
// no error is expected.
func MustMatch(tb testing.TB, err error, want string) {
	tb.Helper()

	if err == nil {
		if want != "" {
			tb.Fatalf("missing error, want: %q got: nil", want)
		}
		return
	}

	if want == "" {
		tb.Fatalf("unexpected error: got: %v", err)
	}
	if !strings.Contains(err.Error(), want) {
		tb.Fatalf("wrong error; want: %q got: %v", want, err)
	}
}

// MustBe fails the test if err is not target according to errors.Is. A nil
// target means no error is expected.
func MustBe(tb testing.TB, err, target error) {
	tb.Helper()

	if target == nil {
		if err != nil {
			tb.Fatalf("unexpected error: got: %v", err)
		}
		return
	}

	if !errors.Is(err, target) {
		tb.Fatalf("wrong error; want: %v got: %v", target, err)
	}
}
