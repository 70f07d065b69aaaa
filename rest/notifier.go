package rest

import (
	"fmt"
	"net"
)

// notifier is a one-directional wakeup channel built on a loopback TCP
// socket pair. One byte is one wakeup.
//
// Why sockets instead of a sync.Cond or a channel? Future versions will want
// to deliver notifications across processes in a multi-process cluster, and
// only a socket generalises to that.
type notifier struct {
	recv net.Conn
	send net.Conn
}

// newNotifier binds a loopback listener on an ephemeral port, connects back
// to it, and accepts the single expected connection. Failures here are fatal
// to queue startup.
func newNotifier() (*notifier, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	defer ln.Close()

	send, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		return nil, fmt.Errorf("connect notifier: %w", err)
	}

	recv, err := ln.Accept()
	if err != nil {
		send.Close()
		return nil, fmt.Errorf("accept notifier: %w", err)
	}

	return &notifier{recv: recv, send: send}, nil
}

// Signal wakes the receiving side. Any byte will do.
func (n *notifier) Signal() {
	n.send.Write([]byte{'X'})
}

// Wait blocks until one signal byte arrives. Returns false when the notifier
// has been closed.
func (n *notifier) Wait() bool {
	var b [1]byte
	_, err := n.recv.Read(b[:])
	return err == nil
}

// Close tears down both sides, releasing any blocked Wait.
func (n *notifier) Close() {
	n.send.Close()
	n.recv.Close()
}
