package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	require.NoError(t, err)
	assert.NotEqual(t, "changeme", hash)

	u := User{Password: hash}
	assert.True(t, u.VerifyPassword("changeme"))
	assert.False(t, u.VerifyPassword("wrong"))

	broken := User{Password: "not-a-hash"}
	assert.False(t, broken.VerifyPassword("changeme"))
}
