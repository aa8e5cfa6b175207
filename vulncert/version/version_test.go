package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionEqual(t *testing.T) {
	tests := []struct {
		left     string
		right    string
		expected bool
	}{
		{left: "7.1", right: "7.1", expected: true},
		{left: "7.1", right: "7.1.0", expected: true},
		{left: "7.1", right: "7.10", expected: false},
		{left: "2.6.0.1", right: "2.6.0.1", expected: true},
		{left: "2.6.0.1", right: "2.6.0", expected: false},
		{left: "v1.2", right: "1.2", expected: true},
		{left: "-", right: "-", expected: true},
		{left: "-", right: "*", expected: false},
		{left: "*", right: "*", expected: true},
		{left: "-", right: "7.1", expected: false},
		{left: "build 42", right: "build 42", expected: true},
		{left: "build 42", right: "build 43", expected: false},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%s=%s", test.left, test.right), func(t *testing.T) {
			assert.Equal(t, test.expected, New(test.left).Equal(New(test.right)))
			assert.Equal(t, test.expected, New(test.right).Equal(New(test.left)))
		})
	}
}

func TestIsSemantic(t *testing.T) {
	assert.True(t, New("7.1").IsSemantic())
	assert.True(t, New("2.6.0.1").IsSemantic())
	assert.False(t, New("-").IsSemantic())
	assert.False(t, New("*").IsSemantic())
	assert.False(t, New("").IsSemantic())
}
