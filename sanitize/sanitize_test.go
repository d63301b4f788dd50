package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Clean(t *testing.T) {
	req := require.New(t)

	cases := map[string]string{
		"  Ann  ":                      "Ann",
		"<b>Ann</b>":                   "Ann",
		"<script>alert(1)</script>":    "",
		"hello <i>world</i>\t":         "hello world",
		"":                             "",
		"   <img src=x onerror=pwn()>": "",
	}
	for input, want := range cases {
		req.Equal(want, Clean(input), "input %q", input)
	}
}
