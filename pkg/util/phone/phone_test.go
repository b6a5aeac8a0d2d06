package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	testCases := map[string]bool{
		"13800000000":  true,
		"1380000000":   false,
		"138000000000": false,
		"1380000000a":  false,
		"":             false,
		" 13800000000": false,
	}
	for in, want := range testCases {
		assert.Equal(t, want, Valid(in), in)
	}
	assert.True(t, Valid(Normalize(" 13800000000 ")))
}
