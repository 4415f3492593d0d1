package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEthereumAddress(t *testing.T) {
	t.Run("ValidAddresses", func(t *testing.T) {
		validAddresses := []string{
			"0x1234567890123456789012345678901234567890",
			"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			"0x0000000000000000000000000000000000000000",
			" 0x5454605539E81ecfD30085Eba7ebBe80cB66eEA8 ",
		}

		for _, addr := range validAddresses {
			assert.True(t, IsValidEthereumAddress(addr), "Address should be valid: %s", addr)
		}
	})

	t.Run("InvalidAddresses", func(t *testing.T) {
		invalidAddresses := []string{
			"",
			"0x123",
			"0x12345678901234567890123456789012345678901",
			"0xGGGG567890123456789012345678901234567890",
		}

		for _, addr := range invalidAddresses {
			assert.False(t, IsValidEthereumAddress(addr), "Address should be invalid: %s", addr)
		}
	})
}

func TestIsZeroAddress(t *testing.T) {
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.True(t, IsZeroAddress(""))
	assert.True(t, IsZeroAddress("0x123"))
	assert.False(t, IsZeroAddress("0x5454605539E81ecfD30085Eba7ebBe80cB66eEA8"))
}
