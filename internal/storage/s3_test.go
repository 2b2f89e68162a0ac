package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	key := BuildKey("leads", "Aadhaar Card.PDF")

	assert.True(t, strings.HasPrefix(key, "leads/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"), "extension is lowercased: %s", key)

	// Same input twice never collides
	assert.NotEqual(t, key, BuildKey("leads", "Aadhaar Card.PDF"))
}

func TestBuildKeyNoExtension(t *testing.T) {
	key := BuildKey("compiled", "report")
	assert.True(t, strings.HasPrefix(key, "compiled/"))
	assert.NotContains(t, key, ".")
}
