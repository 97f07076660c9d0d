package postcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForPrinting(t *testing.T) {
	cases := map[string]string{
		"ab1 2cd":    "AB1 2CD",
		"iv36tr":     "IV3 6TR",
		" EH6  6JP ": "EH6 6JP",
		"ec1a1bb":    "EC1A 1BB",
		"G1 1AA":     "G1 1AA",
		"ab1":        "AB1",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatForPrinting(in), "input %q", in)
	}
}

func TestFormatForPrintingIsIdempotent(t *testing.T) {
	for _, in := range []string{"ab1 2cd", "iv36tr", "W1A 1AA", "x"} {
		once := FormatForPrinting(in)
		assert.Equal(t, once, FormatForPrinting(once), "input %q", in)
	}
}

func TestIsRealUK(t *testing.T) {
	for _, ok := range []string{"AB1 2CD", "IV3 6TR", "EC1A 1BB", "W1A 1AA", "G1 1AA", "ZE1 0AA", "GIR 0AA"} {
		assert.True(t, IsRealUK(ok), "expected %q to be a real postcode", ok)
	}
	for _, bad := range []string{"ZZ9 9ZZ", "QQ1 1AA", "AB1 2C", "AB12CD", "ab1 2cd", "", "12345"} {
		assert.False(t, IsRealUK(bad), "expected %q to be rejected", bad)
	}
}
