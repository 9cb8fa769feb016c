package tor

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// testOnion returns a valid v3 address built from a fixed public key.
func testOnion(t *testing.T) string {
	t.Helper()

	addr, err := ComputeV3AddressFromPublicKey(bytes.Repeat([]byte{0x2a}, 32))
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

// TestIsValidV3Address tests v3 onion validation.
func TestIsValidV3Address(t *testing.T) {
	t.Parallel()

	valid := testOnion(t)

	// Flip one character of the encoded key so the checksum no longer matches.
	broken := []byte(valid)
	if broken[0] == 'a' {
		broken[0] = 'b'
	} else {
		broken[0] = 'a'
	}

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{name: "computed address", address: valid, want: true},
		{name: "uppercase is accepted", address: strings.ToUpper(valid), want: true},
		{name: "bad checksum", address: string(broken), want: false},
		{name: "v2 length", address: "expyuzz4wqqyqhjn.onion", want: false},
		{name: "missing suffix", address: strings.TrimSuffix(valid, OnionSuffix), want: false},
		{name: "clearnet", address: "example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsValidV3Address(tt.address); got != tt.want {
				t.Errorf("IsValidV3Address(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestComputeV3AddressFromPublicKey tests address derivation.
func TestComputeV3AddressFromPublicKey(t *testing.T) {
	t.Parallel()

	addr := testOnion(t)
	if len(addr) != 62 || !strings.HasSuffix(addr, OnionSuffix) {
		t.Errorf("unexpected address %q", addr)
	}

	if _, err := ComputeV3AddressFromPublicKey([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidOnionAddress) {
		t.Errorf("expected ErrInvalidOnionAddress, got %v", err)
	}
}

// TestCheckAPIHost tests the API URL transport check.
func TestCheckAPIHost(t *testing.T) {
	t.Parallel()

	onion := testOnion(t)

	tests := []struct {
		name    string
		url     string
		viaTor  bool
		wantErr error
	}{
		{name: "clearnet without tor", url: "https://encuesta.example.pe", viaTor: false},
		{name: "clearnet with tor", url: "http://localhost:8080", viaTor: true},
		{name: "onion with tor", url: "http://" + onion, viaTor: true},
		{name: "onion with port and tor", url: "http://" + onion + ":8080/api", viaTor: true},
		{name: "onion without tor", url: "http://" + onion, viaTor: false, wantErr: ErrOnionNeedsTor},
		{name: "invalid onion", url: "http://notanonionaddress.onion", viaTor: true, wantErr: ErrInvalidOnionAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckAPIHost(tt.url, tt.viaTor)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestIsOnionHost tests the .onion domain check.
func TestIsOnionHost(t *testing.T) {
	t.Parallel()

	for host, want := range map[string]bool{
		"abc.onion":   true,
		"ABC.ONION":   true,
		"abc.onion.":  true,
		"example.com": false,
		"onion.com":   false,
	} {
		if got := IsOnionHost(host); got != want {
			t.Errorf("IsOnionHost(%q) = %v, want %v", host, got, want)
		}
	}
}
