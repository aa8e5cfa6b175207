package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/matcher"
)

func testResult() vulncert.Result {
	return vulncert.Result{
		Products: []vulncert.ProductResult{
			{
				Product: matcher.Product{Vendor: "Initech", Name: "TPS Reporter"},
			},
		},
	}
}

func TestParseOption(t *testing.T) {
	cases := []struct {
		input    string
		expected Option
	}{
		{
			"",
			UnknownPresenter,
		},
		{
			"table",
			TablePresenter,
		},
		{
			"jSOn",
			JSONPresenter,
		},
		{
			"booboodepoopoo",
			UnknownPresenter,
		},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			actual := ParseOption(tc.input)
			assert.Equal(t, tc.expected, actual, "unexpected result for input %q", tc.input)
		})
	}
}

func TestOptionString(t *testing.T) {
	assert.Equal(t, "json", JSONPresenter.String())
	assert.Equal(t, "table", TablePresenter.String())
	assert.Equal(t, "UnknownPresenter", UnknownPresenter.String())
	assert.Equal(t, "UnknownPresenter", Option(42).String())
}

func TestGetPresenter(t *testing.T) {
	for _, option := range Options {
		assert.NotNil(t, GetPresenter(option, testResult()), "no presenter for option %q", option)
	}
	assert.Nil(t, GetPresenter(UnknownPresenter, testResult()))
}
