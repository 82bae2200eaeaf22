package daemon

import (
	"context"
	"fmt"
	"net/netip"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satokano/stamanagement/internal/dad"
	"github.com/satokano/stamanagement/internal/iface"
)

// Daemon wires the interface adapter, DAD transport, timer table and
// address-lifecycle controller into the running service described by
// Config.
type Daemon struct {
	cfg        Config
	ifaceAdp   stationAdapter
	transport  *dad.Transport
	controller *Controller
	log        *zap.SugaredLogger
}

// New builds a Daemon bound to the interface and transport named in cfg.
func New(cfg Config, log *zap.SugaredLogger) (*Daemon, error) {
	ifaceAdp, err := iface.New(cfg.Interface)
	if err != nil {
		return nil, fmt.Errorf("daemon: open interface: %w", err)
	}

	transport, err := dad.NewTransport(cfg.Interface, cfg.Port, log)
	if err != nil {
		return nil, fmt.Errorf("daemon: open transport: %w", err)
	}

	timers := newTimerTable()
	controller := NewController(transport, ifaceAdp, timers, cfg.WaitWindow, log)

	return &Daemon{
		cfg:        cfg,
		ifaceAdp:   ifaceAdp,
		transport:  transport,
		controller: controller,
		log:        log,
	}, nil
}

// Run starts the UDP receive loop and the position-ingress loop, both
// supervised by an errgroup under ctx: either failing, or ctx being
// canceled, stops both.
func (d *Daemon) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return d.transport.Run(ctx, d.handleFrame)
	})
	group.Go(func() error {
		return d.runIngress(ctx)
	})

	return group.Wait()
}

// handleFrame dispatches a decoded DAD frame: answer AREQs with the
// interface's current STA status, and feed duplicate AREPs to the
// controller.
func (d *Daemon) handleFrame(src netip.AddrPort, frame dad.Frame) {
	switch frame.Type {
	case dad.TypeAREQ:
		current, ok, err := d.ifaceAdp.CurrentSTA()
		if err != nil {
			d.log.Warnw("failed to read current STA while answering AREQ", zap.Error(err))
			return
		}
		duplicate := ok && current == frame.Address
		if err := d.transport.SendAREP(src, frame.Address, duplicate); err != nil {
			d.log.Warnw("failed to send AREP", zap.Error(err), zap.Stringer("to", src.Addr()))
		}
	case dad.TypeAREP:
		if frame.Duplicate {
			d.controller.NotifyDuplicate(frame.Address)
		}
	}
}
