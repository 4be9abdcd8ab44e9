package device

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// Remote is a Sink adapted from the teacher machine's SerialTTY: it
// listens on a loopback TCP port and streams ecall output to whichever
// console process attaches, so a simulator running headless (e.g. inside
// `rv32 run --remote`) can be watched from a second terminal.
//
// Unlike the teacher's SerialTTY, Remote carries no input register or
// status-register polling protocol — the RV32I ecall contract this
// toolchain implements (spec.md §4.1) is output-only and never blocks
// waiting on device input, so InterruptPending's polling loop has no
// counterpart here.
type Remote struct {
	listener net.Listener
	conn     net.Conn
	log      *logrus.Logger
}

// Listen starts listening on 127.0.0.1:0 (an OS-assigned port) and
// returns a Remote sink that will accept its single controlling
// connection lazily, on first write.
func Listen(log *logrus.Logger) (*Remote, error) {
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Infof("device: remote console listening on %s", nl.Addr())
	}
	return &Remote{listener: nl, log: log}, nil
}

// Addr returns the address a console should dial to attach.
func (r *Remote) Addr() net.Addr {
	return r.listener.Addr()
}

// Close closes the listener and, if attached, the accepted connection.
func (r *Remote) Close() error {
	if r.conn != nil {
		r.conn.Close()
	}
	return r.listener.Close()
}

func (r *Remote) ensureAttached() error {
	if r.conn != nil {
		return nil
	}
	conn, err := r.listener.Accept()
	if err != nil {
		return err
	}
	r.conn = conn
	return nil
}

func (r *Remote) write(s string) {
	if err := r.ensureAttached(); err != nil {
		if r.log != nil {
			r.log.Warnf("device: remote console not attached: %s", err)
		}
		return
	}
	if _, err := r.conn.Write([]byte(s)); err != nil && r.log != nil {
		r.log.Warnf("device: remote console write failed: %s", err)
	}
}

func (r *Remote) PrintInt(v int32) {
	r.write(fmt.Sprintf("%d", v))
}

func (r *Remote) PrintString(s string) {
	r.write(s)
}

func (r *Remote) PrintChar(c byte) {
	r.write(string([]byte{c}))
}

var _ Sink = (*Remote)(nil)
