package printing

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// flushWait bounds the post-write drain before closing. Thermal printers
// buffer slowly; closing immediately after the write can truncate the job.
const flushWait = 250 * time.Millisecond

// NetTransport sends one print job over one TCP connection. No retries, no
// shared state; the connection lives and dies inside a single call.
type NetTransport struct{}

func NewNetTransport() NetTransport {
	return NetTransport{}
}

// Send connects with the given timeout, writes the payload followed by the
// partial-cut sequence and closes the connection on every exit path.
func (NetTransport) Send(host string, port int, payload []byte, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set deadline %s: %w", addr, err)
	}

	job := make([]byte, 0, len(payload)+len(PartialCut))
	job = append(job, payload...)
	job = append(job, PartialCut...)
	if _, err := conn.Write(job); err != nil {
		return fmt.Errorf("write %s: %w", addr, err)
	}

	// Half-close and drain briefly so the kernel flushes the job before
	// the socket goes away.
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
		_ = conn.SetReadDeadline(time.Now().Add(flushWait))
		_, _ = io.Copy(io.Discard, conn)
	}
	return nil
}

// TestConnection performs a connect-only health check.
func (NetTransport) TestConnection(host string, port int, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	return conn.Close()
}
