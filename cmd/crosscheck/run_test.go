package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avasile/crosscheck/pkg/lang"
)

func TestResolveLanguage(t *testing.T) {
	// Judge identifiers resolve through the mapping.
	assert.Equal(t, lang.CPP, resolveLanguage("cc.cc14o2"))
	assert.Equal(t, lang.Python3, resolveLanguage("py.pypy3"))
	assert.Equal(t, lang.Kotlin, resolveLanguage("kt.jvm"))

	// Unseen variants of known families fall back by prefix.
	assert.Equal(t, lang.CPP, resolveLanguage("cc.cc23"))

	// Analyzer-native names pass through unchanged.
	assert.Equal(t, lang.Java, resolveLanguage("java"))
	assert.Equal(t, lang.CPP, resolveLanguage("cpp"))
	assert.Equal(t, lang.Language("rlang"), resolveLanguage("rlang"))
}
