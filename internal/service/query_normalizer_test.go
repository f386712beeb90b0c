package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ordinals", in: "show me module 3rd sem 1st", want: "show me module 3 sem 1"},
		{name: "words", in: "Second Module of the FIFTH semester", want: "2 module of the 5 semester"},
		{name: "all ordinals", in: "first second third fourth fifth sixth", want: "1 2 3 4 5 6"},
		{name: "substring match", in: "firstname", want: "1name"},
		{name: "untouched", in: "BCS515C notes", want: "bcs515c notes"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.in))
		})
	}
}
