package daemon

import (
	"errors"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satokano/stamanagement/internal/timer"
)

// areqSender is the slice of dad.Transport the controller needs: broadcast
// an AREQ for a candidate address.
type areqSender interface {
	SendAREQ(addr netip.Addr) error
}

// stationAdapter is the slice of iface.Adapter the controller needs: read
// and replace the interface's current STA.
type stationAdapter interface {
	CurrentSTA() (netip.Addr, bool, error)
	Add(addr netip.Addr) error
	Remove(addr netip.Addr) error
}

// Phase is the lifecycle state of the node's tentative address.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDAD
	PhaseDuplicate
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDAD:
		return "dad"
	case PhaseDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// dadTimerSlot is the one timer slot the daemon uses; newTimerTable sizes
// the daemon's table to exactly this one slot.
const dadTimerSlot = 0

func newTimerTable() *timer.Table {
	return timer.NewTable(1)
}

// ErrBusy is returned by BeginDAD when an attempt is already in progress.
var ErrBusy = errors.New("daemon: dad attempt already in progress")

// tentativeAddress is the single in-flight candidate STA: generated from a
// position update, not yet committed or abandoned.
type tentativeAddress struct {
	mu          sync.Mutex
	address     netip.Addr
	generatedAt time.Time
	phase       Phase
}

// Controller owns the address lifecycle: starting a DAD attempt, reacting
// to a peer's duplicate claim, and committing or abandoning the tentative
// address when its wait window elapses.
type Controller struct {
	tentative  tentativeAddress
	timers     *timer.Table
	transport  areqSender
	ifaceAdp   stationAdapter
	waitWindow time.Duration
	log        *zap.SugaredLogger
}

// NewController builds a Controller over the given transport, interface
// adapter and timer table.
func NewController(transport areqSender, ifaceAdp stationAdapter, timers *timer.Table, waitWindow time.Duration, log *zap.SugaredLogger) *Controller {
	return &Controller{
		timers:     timers,
		transport:  transport,
		ifaceAdp:   ifaceAdp,
		waitWindow: waitWindow,
		log:        log,
	}
}

// Phase reports the controller's current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.tentative.mu.Lock()
	defer c.tentative.mu.Unlock()
	return c.tentative.phase
}

// BeginDAD starts a DAD attempt for candidate: it broadcasts an AREQ and
// arms the wait-window timer. It returns ErrBusy if an attempt is already
// in progress.
func (c *Controller) BeginDAD(candidate netip.Addr) error {
	c.tentative.mu.Lock()
	if c.tentative.phase == PhaseDAD {
		c.tentative.mu.Unlock()
		return ErrBusy
	}
	c.tentative.address = candidate
	c.tentative.generatedAt = time.Now()
	c.tentative.phase = PhaseDAD
	c.tentative.mu.Unlock()

	// Arm before sending: SendAREQ can block for as long as the transport's
	// membership-rejoin backoff runs, and a duplicate AREP must always find
	// a live timer to cancel, never a window where NotifyDuplicate's
	// Cancel is a no-op because Arm hasn't happened yet.
	c.timers.Arm(dadTimerSlot, c.waitWindow, c.onTimeout)

	if err := c.transport.SendAREQ(candidate); err != nil {
		c.log.Warnw("failed to broadcast AREQ; attempt proceeds on its timer regardless", zap.Error(err))
	}

	return nil
}

// NotifyDuplicate marks the in-flight attempt for addr as a duplicate and
// cancels its timer, which fires the abandon path promptly rather than
// waiting out the rest of the window.
func (c *Controller) NotifyDuplicate(addr netip.Addr) {
	c.tentative.mu.Lock()
	if c.tentative.phase != PhaseDAD || c.tentative.address != addr {
		c.tentative.mu.Unlock()
		return
	}
	c.tentative.phase = PhaseDuplicate
	c.tentative.mu.Unlock()

	c.timers.Cancel(dadTimerSlot)
}

// onTimeout runs when the wait-window timer fires, whether by natural
// expiry or by a duplicate-triggered cancel. Exactly one of these runs per
// BeginDAD call.
func (c *Controller) onTimeout() {
	c.tentative.mu.Lock()
	defer c.tentative.mu.Unlock()

	attemptDuration := time.Since(c.tentative.generatedAt)
	switch c.tentative.phase {
	case PhaseDAD:
		c.commit(c.tentative.address, attemptDuration)
	case PhaseDuplicate:
		c.log.Infow("abandoning duplicate STA",
			zap.Stringer("address", c.tentative.address), zap.Duration("attempt_duration", attemptDuration))
	}

	c.tentative.phase = PhaseIdle
	c.tentative.address = netip.Addr{}
	c.tentative.generatedAt = time.Time{}
}

// commit replaces the interface's current STA with candidate, removing
// whatever STA was previously bound. attemptDuration is logged alongside
// the commit for visibility into how long the DAD wait window actually ran.
func (c *Controller) commit(candidate netip.Addr, attemptDuration time.Duration) {
	if current, ok, err := c.ifaceAdp.CurrentSTA(); err != nil {
		c.log.Warnw("failed to enumerate interface addresses before commit", zap.Error(err))
	} else if ok {
		if err := c.ifaceAdp.Remove(current); err != nil {
			c.log.Warnw("failed to remove prior STA", zap.Error(err), zap.Stringer("address", current))
		}
	}

	if err := c.ifaceAdp.Add(candidate); err != nil {
		c.log.Warnw("failed to add committed STA", zap.Error(err), zap.Stringer("address", candidate))
		return
	}
	c.log.Infow("committed new STA",
		zap.Stringer("address", candidate), zap.Duration("attempt_duration", attemptDuration))
}
