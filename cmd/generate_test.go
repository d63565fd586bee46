package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Spanish greetings":   "spanish-greetings",
		"  Go: channels!  ":   "go-channels",
		"C++ & Rust":          "c-rust",
		"???":                 "deck",
		"World War 2 battles": "world-war-2-battles",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug(in), in)
	}
}
