// Package testutil provides test helpers shared across packages.
package testutil

import (
	"testing"
)

// FatalErr calls t.Fatal with err, including its stack trace when the
// error carries one.
func FatalErr(t testing.TB, err error) {
	t.Fatalf("%+v", err)
}
