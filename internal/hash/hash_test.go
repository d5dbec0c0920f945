package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	// SHA-256 of the empty input is a fixed, well-known value.
	const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, emptyDigest, Digest(nil))
	assert.Equal(t, emptyDigest, DigestString(""))

	assert.Equal(t, Digest([]byte("abc")), DigestString("abc"))
	assert.NotEqual(t, DigestString("abc"), DigestString("abd"))
	assert.Len(t, DigestString("anything"), 64)
}
