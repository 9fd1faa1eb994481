package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUID(t *testing.T) {
	uuid := UUID()
	assert.True(t, IsValidUUID(uuid))
	assert.False(t, IsValidUUID("foo"))
}

func TestKSUID(t *testing.T) {
	first := KSUID()
	assert.True(t, IsValidKSUID(first))
	assert.False(t, IsValidKSUID("foo"))
}
