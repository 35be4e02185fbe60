package printing

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// startFakePrinter listens on a loopback port and captures everything a
// single connection writes.
func startFakePrinter(t *testing.T) (host string, port int, received <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		out <- data
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, out
}

func TestNetTransport_Send(t *testing.T) {
	t.Parallel()

	host, port, received := startFakePrinter(t)
	payload := []byte(escInit + "KITCHEN ORDER\n\n\n")

	transport := NewNetTransport()
	if err := transport.Send(host, port, payload, 2*time.Second); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	select {
	case data := <-received:
		want := append(append([]byte{}, payload...), PartialCut...)
		if !bytes.Equal(data, want) {
			t.Fatalf("printer received %q, want payload followed by cut", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("printer never received the job")
	}
}

func TestNetTransport_SendConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a free port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	transport := NewNetTransport()
	err = transport.Send("127.0.0.1", port, []byte("ticket"), 500*time.Millisecond)
	if err == nil {
		t.Fatalf("expected connection error")
	}
	if !strings.Contains(err.Error(), "connect 127.0.0.1:"+strconv.Itoa(port)) {
		t.Fatalf("expected address in error, got %v", err)
	}
}

func TestNetTransport_TestConnection(t *testing.T) {
	t.Parallel()

	host, port, _ := startFakePrinter(t)
	transport := NewNetTransport()

	if err := transport.TestConnection(host, port, time.Second); err != nil {
		t.Fatalf("expected probe to succeed, got %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	freePort := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	if err := transport.TestConnection("127.0.0.1", freePort, 500*time.Millisecond); err == nil {
		t.Fatalf("expected probe failure on closed port")
	}
}
