package utils

import (
	"crypto/aes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRoundTrip(t *testing.T) {
	secret := "unit-test-secret"
	texts := []string{
		"short",
		"exactly sixteen!",
		"a longer note spanning multiple aes blocks with some detail in it",
		"unicode: žluťoučký kůň úpěl ďábelské ódy",
	}
	for _, text := range texts {
		encrypted, err := EncryptNote(secret, text)
		require.NoError(t, err)
		assert.NotEqual(t, text, encrypted)

		decrypted, err := DecryptNote(secret, encrypted)
		require.NoError(t, err)
		assert.Equal(t, text, decrypted)
	}
}

func TestNotePaddingIsTrimmed(t *testing.T) {
	secret := "unit-test-secret"

	// 7 chars pads to a full block of spaces; trailing input spaces are also lost
	encrypted, err := EncryptNote(secret, "7 chars")
	require.NoError(t, err)
	decrypted, err := DecryptNote(secret, encrypted)
	require.NoError(t, err)
	assert.Equal(t, "7 chars", decrypted)
}

func TestNoteCiphertextFormat(t *testing.T) {
	encrypted, err := EncryptNote("k", "hello")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)

	// iv || ciphertext, both block aligned
	assert.Equal(t, 2*aes.BlockSize, len(raw))

	// Fresh iv every time
	again, err := EncryptNote("k", "hello")
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptNote("k", "not base64 at all!!!")
	assert.Error(t, err)

	_, err = DecryptNote("k", base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}
