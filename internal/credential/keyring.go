// Package credential stores the IMAP password and the LLM API key in the
// system keyring, with environment variables as an override for headless
// setups.
package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "mailtriage"

// Credential keys and the environment variables that override them.
const (
	KeyIMAPPassword = "imap-password"
	KeyLLMAPIKey    = "llm-api-key"

	EnvIMAPPassword = "MAILTRIAGE_IMAP_PASSWORD"
	EnvLLMAPIKey    = "ANTHROPIC_API_KEY"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailtriage/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailtriage-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Resolve returns the credential for key, preferring the environment
// variable when it is set.
func Resolve(key, envVar string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return Get(key)
}

// IMAPPassword resolves the mailbox password.
func IMAPPassword() (string, error) {
	return Resolve(KeyIMAPPassword, EnvIMAPPassword)
}

// LLMAPIKey resolves the language-model API key.
func LLMAPIKey() (string, error) {
	return Resolve(KeyLLMAPIKey, EnvLLMAPIKey)
}
