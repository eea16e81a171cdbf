package config

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "funnelforge"

// StoreWarehousePassword keeps the warehouse password in the OS
// keychain so it never lands in the config file.
func StoreWarehousePassword(account, username, password string) error {
	if err := keyring.Set(keyringService, account+"/"+username, password); err != nil {
		return fmt.Errorf("failed to store warehouse password: %w", err)
	}
	return nil
}

// WarehousePassword retrieves the stored warehouse password. Returns
// an empty string when none is stored.
func WarehousePassword(account, username string) (string, error) {
	secret, err := keyring.Get(keyringService, account+"/"+username)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read warehouse password: %w", err)
	}
	return secret, nil
}

// DeleteWarehousePassword removes the stored password, ignoring a
// missing entry.
func DeleteWarehousePassword(account, username string) error {
	err := keyring.Delete(keyringService, account+"/"+username)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete warehouse password: %w", err)
	}
	return nil
}
