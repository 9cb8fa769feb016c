package tor

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:9050")
		}
	})

	t.Run("invalid addresses return ErrInvalidProxyAddress", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"", "127.0.0.1", ":9050", "127.0.0.1:", "127.0.0.1:9050:extra"} {
			if _, err := NewClient(addr, time.Second); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewClient(%q): expected ErrInvalidProxyAddress, got %v", addr, err)
			}
		}
	})

	t.Run("HTTPClient carries the timeout", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 7*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		hc := client.HTTPClient()
		if hc.Timeout != 7*time.Second {
			t.Errorf("expected timeout 7s, got %v", hc.Timeout)
		}
		if hc.Jar != nil {
			t.Error("expected no cookie jar")
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:9050", true},
		{"valid hostname with port", "tor.example.com:9050", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non-numeric port", "127.0.0.1:tor", false},
		{"max port", "127.0.0.1:65535", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

// TestHTTPClient tests that requests travel through the SOCKS5 proxy.
func TestHTTPClient(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/health", http.StatusFound)
		}
	}))
	defer backend.Close()

	proxyAddr, connects := startSOCKS5(t)

	client, err := NewClient(proxyAddr, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	hc := client.HTTPClient()

	t.Run("request is proxied", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, backend.URL+"/health", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := hc.Do(req)
		if err != nil {
			t.Fatalf("request through proxy failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if connects.Load() == 0 {
			t.Error("expected the proxy to see a CONNECT")
		}
	})

	t.Run("redirects are not followed", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, backend.URL+"/moved", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := hc.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected 302, got %d", resp.StatusCode)
		}
	})
}

// startSOCKS5 starts a minimal no-auth SOCKS5 proxy that relays CONNECT
// requests. It returns the proxy address and a CONNECT counter.
func startSOCKS5(t *testing.T) (string, *atomic.Int32) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start proxy: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	var connects atomic.Int32
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()

				greeting := make([]byte, 3)
				if _, err := io.ReadFull(conn, greeting); err != nil {
					return
				}
				_, _ = conn.Write([]byte{0x05, 0x00})

				header := make([]byte, 4)
				if _, err := io.ReadFull(conn, header); err != nil {
					return
				}

				var host string
				switch header[3] {
				case 0x01:
					ip := make([]byte, 4)
					if _, err := io.ReadFull(conn, ip); err != nil {
						return
					}
					host = net.IP(ip).String()
				case 0x03:
					n := make([]byte, 1)
					if _, err := io.ReadFull(conn, n); err != nil {
						return
					}
					name := make([]byte, n[0])
					if _, err := io.ReadFull(conn, name); err != nil {
						return
					}
					host = string(name)
				default:
					return
				}
				port := make([]byte, 2)
				if _, err := io.ReadFull(conn, port); err != nil {
					return
				}
				connects.Add(1)

				target, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(int(binary.BigEndian.Uint16(port))))) //nolint:noctx // test code
				if err != nil {
					_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
					return
				}
				defer target.Close()
				_, _ = conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})

				go func() { _, _ = io.Copy(target, conn) }()
				_, _ = io.Copy(conn, target)
			}()
		}
	}()

	return listener.Addr().String(), &connects
}

// TestCheckConnection tests the SOCKS5 proxy verification.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	// serve starts a one-shot server that runs handle on the first connection.
	serve := func(t *testing.T, handle func(net.Conn)) string {
		t.Helper()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to start mock server: %v", err)
		}
		t.Cleanup(func() { _ = listener.Close() })

		go func() {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			handle(conn)
		}()
		return listener.Addr().String()
	}

	check := func(t *testing.T, addr string) ProxyStatus {
		t.Helper()

		client, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		return client.CheckConnection(context.Background())
	}

	t.Run("returns CannotConnect for non-existent proxy", func(t *testing.T) {
		t.Parallel()

		if status := check(t, "127.0.0.1:59999"); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for non-SOCKS5 server", func(t *testing.T) {
		t.Parallel()

		addr := serve(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		})
		if status := check(t, addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serve(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})
		if status := check(t, addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for valid SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := serve(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			connectBuf := make([]byte, 256)
			_, _ = conn.Read(connectBuf)
			// Host unreachable still proves a working proxy.
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})
		if status := check(t, addr); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns WrongType for wrong version in CONNECT response", func(t *testing.T) {
		t.Parallel()

		addr := serve(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			connectBuf := make([]byte, 256)
			_, _ = conn.Read(connectBuf)
			_, _ = conn.Write([]byte{0x04, 0x00, 0x00, 0x01})
		})
		if status := check(t, addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:59998", 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		status := client.CheckConnection(ctx)
		if status != ProxyStatusCannotConnect && status != ProxyStatusTimeout {
			t.Errorf("expected ProxyStatusCannotConnect or ProxyStatusTimeout, got %v", status)
		}
	})
}

// TestDialContext tests the DialContext method.
func TestDialContext(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:59997", 30*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.DialContext(ctx, "tcp", "example.onion:80"); err == nil {
		t.Error("expected an error for a cancelled context and no proxy")
	}
}

// TestProxyStatus tests ProxyStatus String and Error.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()

			if got := tt.status.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if err := tt.status.Error(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("unexpected result for an unknown status")
	}
}
