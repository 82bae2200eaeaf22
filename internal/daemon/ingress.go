package daemon

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/satokano/stamanagement/internal/geo"
	"github.com/satokano/stamanagement/internal/position"
	"github.com/satokano/stamanagement/internal/sta"
)

// runIngress reads position records off the FIFO until ctx is canceled or
// the writer closes it. A FIFO that cannot even be opened disables position
// ingress for this run rather than failing the whole daemon: the DAD
// responder side still answers AREQs from neighbors without it.
func (d *Daemon) runIngress(ctx context.Context) error {
	reader, err := position.Open(d.cfg.FifoPath, d.log)
	if err != nil {
		d.log.Warnw("position FIFO unavailable; position ingress disabled for this run", zap.Error(err))
		<-ctx.Done()
		return ctx.Err()
	}
	defer reader.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, position.ErrClosed) {
				d.log.Infow("position FIFO closed by writer")
				return nil
			}
			d.log.Debugw("position record read error", zap.Error(err))
			continue
		}

		d.onPosition(rec)
	}
}

// onPosition reacts to one position update: if the interface has no STA
// yet, or the node has drifted outside its current STA's validity window,
// start a DAD attempt for a freshly encoded candidate.
func (d *Daemon) onPosition(rec position.Record) {
	real := sta.SpatioTemporal{Time: rec.Time, Lat: rec.Lat, Lon: rec.Lon, Alt: rec.Alt}

	current, ok, err := d.ifaceAdp.CurrentSTA()
	if err != nil {
		d.log.Warnw("failed to enumerate interface addresses", zap.Error(err))
		return
	}

	if ok {
		decoded, err := sta.Decode(current)
		if err == nil && geo.InsideValidRange(real, decoded) {
			return
		}
	}

	d.beginDADFor(real)
}

func (d *Daemon) beginDADFor(real sta.SpatioTemporal) {
	candidate, err := sta.Encode(real)
	if err != nil {
		d.log.Debugw("failed to encode candidate STA from position update", zap.Error(err))
		return
	}

	if err := d.controller.BeginDAD(candidate); err != nil {
		if errors.Is(err, ErrBusy) {
			d.log.Debugw("dad attempt already in progress; skipping position update", zap.Stringer("candidate", candidate))
			return
		}
		d.log.Warnw("failed to begin dad", zap.Error(err))
	}
}
