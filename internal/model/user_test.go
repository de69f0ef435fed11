package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageNamesDerivedAndSorted(t *testing.T) {
	user := &User{Languages: CountMap{"Python": 200, "Go": 1500, "C": 50}}
	assert.Equal(t, []string{"C", "Go", "Python"}, user.LanguageNames())
}

func TestLanguageNamesEmpty(t *testing.T) {
	user := &User{}
	assert.Empty(t, user.LanguageNames())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 10))
	assert.Equal(t, "abcde", TruncateString("abcdefgh", 5))
}
