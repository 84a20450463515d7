package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnguyen/mailtriage/internal/credential"
)

func TestStoreCredential(t *testing.T) {
	var gotKey, gotValue string
	set := func(key, value string) error {
		gotKey, gotValue = key, value
		return nil
	}

	err := storeCredential(
		credential.KeyIMAPPassword, strings.NewReader("  s3cret\n"), set,
	)
	require.NoError(t, err)
	assert.Equal(t, credential.KeyIMAPPassword, gotKey)
	assert.Equal(t, "s3cret", gotValue)
}

func TestStoreCredentialNoTrailingNewline(t *testing.T) {
	var gotValue string
	set := func(_, value string) error {
		gotValue = value
		return nil
	}

	err := storeCredential(
		credential.KeyLLMAPIKey, strings.NewReader("api-key-value"), set,
	)
	require.NoError(t, err)
	assert.Equal(t, "api-key-value", gotValue)
}

func TestStoreCredentialRejectsUnknownName(t *testing.T) {
	called := false
	set := func(_, _ string) error {
		called = true
		return nil
	}

	err := storeCredential("smtp-password", strings.NewReader("x\n"), set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown credential")
	assert.False(t, called)
}

func TestStoreCredentialRejectsEmptyValue(t *testing.T) {
	set := func(_, _ string) error { return nil }

	err := storeCredential(
		credential.KeyIMAPPassword, strings.NewReader("   \n"), set,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestRemoveCredential(t *testing.T) {
	var gotKey string
	del := func(key string) error {
		gotKey = key
		return nil
	}

	require.NoError(t, removeCredential(credential.KeyLLMAPIKey, del))
	assert.Equal(t, credential.KeyLLMAPIKey, gotKey)

	err := removeCredential("smtp-password", del)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown credential")
}

func TestStoreCredentialSurfacesKeyringFailure(t *testing.T) {
	set := func(_, _ string) error { return errors.New("keyring locked") }

	err := storeCredential(
		credential.KeyLLMAPIKey, strings.NewReader("value\n"), set,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring locked")
}
