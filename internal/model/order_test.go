package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignatureType(t *testing.T) {
	cases := []struct {
		in   string
		want SignatureType
		ok   bool
	}{
		{"EOA", SignatureEOA, true},
		{"eoa", SignatureEOA, true},
		{"POLY_PROXY", SignatureProxy, true},
		{"PROXY", SignatureProxy, true},
		{" proxy ", SignatureProxy, true},
		{"GNOSIS", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseSignatureType(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestAPICredentialsEmpty(t *testing.T) {
	assert.True(t, APICredentials{}.Empty())
	assert.True(t, APICredentials{Secret: "s"}.Empty())
	assert.False(t, APICredentials{Key: "k"}.Empty())
}
