package tor

import (
	"encoding/base32"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Version is the version byte for v3 onion addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// onionV3Pattern matches v3 onion addresses (56 base32 characters + .onion).
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// checksumPrefix is the prefix used in v3 onion address checksum calculation.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (without port) is in the .onion domain.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), OnionSuffix)
}

// IsValidV3Address reports whether address is a v3 onion address with a
// correct checksum and version byte.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// 32 bytes ed25519 public key, 2 bytes checksum, 1 byte version.
	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]
	if version != OnionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum returns the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// ComputeV3AddressFromPublicKey computes the v3 onion address for a 32 byte
// ed25519 public key.
func ComputeV3AddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", ErrInvalidOnionAddress
	}

	data := make([]byte, 35)
	copy(data[:32], pubkey)
	copy(data[32:34], computeV3Checksum(pubkey, OnionV3Version))
	data[34] = OnionV3Version

	return strings.ToLower(base32.StdEncoding.EncodeToString(data)) + OnionSuffix, nil
}

// CheckAPIHost validates the API base URL against the chosen transport.
//
// Clearnet hosts are always accepted. An onion host must be a valid v3
// address and needs a Tor transport, since it cannot be resolved otherwise.
func CheckAPIHost(apiURL string, viaTor bool) error {
	u, err := url.Parse(apiURL)
	if err != nil {
		return fmt.Errorf("failed to parse API URL: %w", err)
	}

	host := u.Hostname()
	if !IsOnionHost(host) {
		return nil
	}
	if !IsValidV3Address(strings.TrimSuffix(host, ".")) {
		return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, host)
	}
	if !viaTor {
		return ErrOnionNeedsTor
	}
	return nil
}
