package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_DefaultStamp(t *testing.T) {
	assert.Equal(t, "dev (commit: none, built: unknown)", String())
}
