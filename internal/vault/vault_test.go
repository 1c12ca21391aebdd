package vault_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcarver/ledgerlink/internal/vault"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNew_KeyLength(t *testing.T) {
	type testCase struct {
		name    string
		key     []byte
		wantErr bool
	}

	tests := []testCase{
		{name: "Valid32Bytes", key: testKey},
		{name: "TooShort", key: []byte("short"), wantErr: true},
		{name: "Empty", key: nil, wantErr: true},
		{name: "TooLong", key: append([]byte(nil), append(testKey, 'x')...), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := vault.New(tt.key)

			if tt.wantErr {
				require.ErrorIs(t, err, vault.ErrInvalidKey)
				assert.Nil(t, v)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}
}

func TestVault_RoundTrip(t *testing.T) {
	v, err := vault.New(testKey)
	require.NoError(t, err)

	plaintexts := []string{
		"",
		"token_live_abc123",
		"héllo wörld ünicode 💸",
		"a-very-long-provider-access-token-" + string(make([]byte, 512)),
	}

	for _, plaintext := range plaintexts {
		encrypted, err := v.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := v.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestVault_NonDeterministic(t *testing.T) {
	v, err := vault.New(testKey)
	require.NoError(t, err)

	first, err := v.Encrypt("same-secret")
	require.NoError(t, err)

	second, err := v.Encrypt("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two encryptions of the same plaintext must differ")
}

func TestVault_TamperDetection(t *testing.T) {
	v, err := vault.New(testKey)
	require.NoError(t, err)

	encrypted, err := v.Encrypt("token_live_abc123")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)

	// Flip one bit in every position; the tag check must reject them all.
	for i := range raw {
		tampered := append([]byte(nil), raw...)
		tampered[i] ^= 0x01

		_, err := v.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		assert.Error(t, err, "tampered byte at offset %d must not decrypt", i)
	}
}

func TestVault_DecryptGarbage(t *testing.T) {
	v, err := vault.New(testKey)
	require.NoError(t, err)

	_, err = v.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = v.Decrypt(base64.StdEncoding.EncodeToString([]byte("tiny")))
	assert.ErrorIs(t, err, vault.ErrCiphertextTooShort)
}

func TestVault_WrongKey(t *testing.T) {
	v1, err := vault.New(testKey)
	require.NoError(t, err)

	v2, err := vault.New([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	encrypted, err := v1.Encrypt("secret")
	require.NoError(t, err)

	_, err = v2.Decrypt(encrypted)
	assert.Error(t, err)
}
