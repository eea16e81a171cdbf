package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestWarehousePasswordRoundtrip(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, StoreWarehousePassword("xy12345", "loader", "hunter2"))

	secret, err := WarehousePassword("xy12345", "loader")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)

	// Account and username together form the key.
	secret, err = WarehousePassword("xy12345", "other")
	require.NoError(t, err)
	assert.Empty(t, secret)

	require.NoError(t, DeleteWarehousePassword("xy12345", "loader"))
	secret, err = WarehousePassword("xy12345", "loader")
	require.NoError(t, err)
	assert.Empty(t, secret)

	// Deleting a missing entry is not an error.
	assert.NoError(t, DeleteWarehousePassword("xy12345", "loader"))
}
