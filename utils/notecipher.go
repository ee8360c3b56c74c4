package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Fixed key-derivation salt. Changing it orphans every stored note.
var noteKeySalt = []byte{5, 15, 195, 12, 83, 32, 44, 44, 91, 174}

func noteKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), noteKeySalt, 1000, 32, sha1.New)
}

// EncryptNote encrypts plaintext with AES-256-CBC under a key derived from the
// configured secret. The plaintext is space-padded to a block multiple and the
// result is base64(iv || ciphertext), matching notes already in the database.
func EncryptNote(secret, plaintext string) (string, error) {
	block, err := aes.NewCipher(noteKey(secret))
	if err != nil {
		return "", err
	}

	padded := []byte(plaintext)
	if rem := len(padded) % aes.BlockSize; rem != 0 {
		padded = append(padded, []byte(strings.Repeat(" ", aes.BlockSize-rem))...)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// DecryptNote reverses EncryptNote, trimming the whitespace padding.
func DecryptNote(secret, encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("note is not valid base64: %w", err)
	}
	if len(raw) < aes.BlockSize || (len(raw)-aes.BlockSize)%aes.BlockSize != 0 {
		return "", fmt.Errorf("note ciphertext has invalid length %d", len(raw))
	}

	block, err := aes.NewCipher(noteKey(secret))
	if err != nil {
		return "", err
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return strings.TrimSpace(string(plaintext)), nil
}
