// Package testutil holds helpers shared by tests: a log sink that is safe for
// concurrent writers and free loopback addresses for live servers.
package testutil

import (
	"bytes"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
)

// LogBuffer collects log output from concurrent writers.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Lines returns the non-empty lines written so far.
func (b *LogBuffer) Lines() []string {
	var out []string
	for line := range strings.SplitSeq(b.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// NewTextLogger returns a debug level text logger writing to a new buffer.
func NewTextLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

var (
	addrMu    sync.Mutex
	usedAddrs = map[string]struct{}{}
)

// FreeAddr returns a 127.0.0.1 address that was free when probed. Addresses
// are never handed out twice within one test binary.
func FreeAddr(t *testing.T) string {
	t.Helper()
	addrMu.Lock()
	defer addrMu.Unlock()

	for range 100 {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to probe for a free port: %v", err)
		}
		addr := l.Addr().String()
		if err := l.Close(); err != nil {
			t.Fatalf("failed to close probe listener: %v", err)
		}
		if _, taken := usedAddrs[addr]; taken {
			continue
		}
		usedAddrs[addr] = struct{}{}
		return addr
	}
	t.Fatal("no free port found")
	return ""
}
