package inquiry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		msg  string
	}{
		{`500`, 500, ""},
		{`"250"`, 250, ""},
		{`" 42 "`, 42, ""},
		{``, 0, "is required"},
		{`null`, 0, "is required"},
		{`""`, 0, "is required"},
		{`0`, 0, "must be greater than 0"},
		{`"-3"`, 0, "must be greater than 0"},
		{`1.5`, 0, "must be a whole number"},
		{`"lots"`, 0, "must be a whole number"},
		{`true`, 0, "must be a whole number"},
	}

	for _, tc := range cases {
		got, msg := parseQuantity(json.RawMessage(tc.raw))
		assert.Equal(t, tc.want, got, tc.raw)
		assert.Equal(t, tc.msg, msg, tc.raw)
	}
}

func TestEmailPattern(t *testing.T) {
	for _, ok := range []string{"a@b.co", "first.last@school.edu.ng"} {
		assert.True(t, emailRe.MatchString(ok), ok)
	}
	for _, bad := range []string{"plain", "a@b", "a b@c.d", "@b.c", "a@@b.c"} {
		assert.False(t, emailRe.MatchString(bad), bad)
	}
}
