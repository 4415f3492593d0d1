package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(strings.TrimSpace(address))
}

// IsZeroAddress reports whether address is absent or parses to 0x0. Invalid
// input counts as zero.
func IsZeroAddress(address string) bool {
	if !IsValidEthereumAddress(address) {
		return true
	}
	return common.HexToAddress(strings.TrimSpace(address)) == (common.Address{})
}
