package dad

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/net/ipv6"
)

// AllNodesMulticast is the link-local all-nodes multicast address every
// AREQ is sent to.
var AllNodesMulticast = net.ParseIP("ff02::1")

const readPollInterval = 500 * time.Millisecond

// Handler processes a decoded frame received from src.
type Handler func(src netip.AddrPort, frame Frame)

// Transport sends and receives AREQ/AREP frames over a UDP socket pinned to
// one wireless interface.
type Transport struct {
	conn *net.UDPConn
	pc   *ipv6.PacketConn
	ifi  *net.Interface
	port int
	log  *zap.SugaredLogger
}

// NewTransport opens a UDP socket on port, pins its multicast interface to
// ifaceName, and ensures the all-nodes multicast group membership needed to
// receive AREQs is in place.
func NewTransport(ifaceName string, port int, log *zap.SugaredLogger) (*Transport, error) {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, TransportError{Op: "look up interface " + ifaceName, Err: err}
	}

	conn, err := net.ListenUDP("udp6", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, TransportError{Op: fmt.Sprintf("listen on udp6 port %d", port), Err: err}
	}

	pc := ipv6.NewPacketConn(conn)
	if err := pc.SetMulticastInterface(ifi); err != nil {
		conn.Close()
		return nil, TransportError{Op: "pin multicast interface", Err: err}
	}

	t := &Transport{conn: conn, pc: pc, ifi: ifi, port: port, log: log}
	if err := t.EnsureMembership(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

const membershipRejoinAttempts = 3

// EnsureMembership checks the kernel's multicast membership table for the
// all-nodes group and rejoins it if absent, with bounded exponential-backoff
// retries: a missed rejoin must not hang whatever AREQ attempt triggered the
// check.
func (t *Transport) EnsureMembership(ctx context.Context) error {
	joined, err := allNodesMembershipJoined(t.ifi.Index)
	if err != nil {
		t.log.Debugw("multicast membership check failed, attempting to rejoin anyway", zap.Error(err))
	} else if joined {
		return nil
	}

	rejoinBackoff := backoff.ExponentialBackOff{
		InitialInterval:     100 * time.Millisecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         2 * time.Second,
	}
	rejoinBackoff.Reset()

	var joinErr error
	for attempt := 1; attempt <= membershipRejoinAttempts; attempt++ {
		joinErr = t.pc.JoinGroup(t.ifi, &net.UDPAddr{IP: AllNodesMulticast})
		if joinErr == nil {
			return nil
		}
		if attempt == membershipRejoinAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return TransportError{Op: "rejoin all-nodes multicast group", Err: ctx.Err()}
		case <-time.After(rejoinBackoff.NextBackOff()):
		}
	}
	return TransportError{Op: "rejoin all-nodes multicast group", Err: joinErr}
}

// SendAREQ multicasts an address request for addr to the all-nodes group.
func (t *Transport) SendAREQ(addr netip.Addr) error {
	if err := t.EnsureMembership(context.Background()); err != nil {
		t.log.Warnw("multicast membership not confirmed before AREQ", zap.Error(err))
	}
	frame := EncodeAREQ(addr)
	dst := &net.UDPAddr{IP: AllNodesMulticast, Port: t.port, Zone: t.ifi.Name}
	if _, err := t.conn.WriteToUDP(frame[:], dst); err != nil {
		return TransportError{Op: "send AREQ", Err: err}
	}
	return nil
}

// SendAREP unicasts an address reply to dst, echoing addr with the given
// duplicate flag.
func (t *Transport) SendAREP(dst netip.AddrPort, addr netip.Addr, duplicate bool) error {
	frame := EncodeAREP(addr, duplicate)
	udpDst := net.UDPAddrFromAddrPort(dst)
	if _, err := t.conn.WriteToUDP(frame[:], udpDst); err != nil {
		return TransportError{Op: "send AREP", Err: err}
	}
	return nil
}

// Run reads datagrams until ctx is canceled, dispatching each decoded frame
// to handler on its own goroutine so one slow handler cannot stall the
// receive loop.
func (t *Transport) Run(ctx context.Context, handler Handler) error {
	buf := make([]byte, FrameSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			return TransportError{Op: "set read deadline", Err: err}
		}

		n, from, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return TransportError{Op: "receive datagram", Err: err}
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		go func() {
			frame, err := Decode(data)
			if err != nil {
				t.log.Debugw("dropping malformed DAD frame", zap.Error(err), zap.Stringer("from", from))
				return
			}
			handler(from.AddrPort(), frame)
		}()
	}
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}
