// Package engine runs a simulation in real time on its own goroutine and
// serves commands, state and telemetry to any number of observers.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"flight-dynamics/internal/config"
	"flight-dynamics/internal/sim"
)

// ErrStopped is returned by requests made after Run has returned.
var ErrStopped = errors.New("engine stopped")

type stateReq struct {
	reply chan Snapshot
}

type seriesReq struct {
	latest bool
	reply  chan []sim.Sample
}

type subscribeReq struct {
	ch chan Snapshot
}

type Engine struct {
	r *runner

	// Actor channels
	cmdCh       chan Command
	stateReqCh  chan stateReq
	seriesReqCh chan seriesReq
	subscribeCh chan subscribeReq
	unsubCh     chan chan Snapshot
	done        chan struct{}

	period time.Duration
	log    zerolog.Logger
}

// New wraps an assembled simulation. The engine ticks once per simulation
// dt of wall time once Run is called.
func New(setup *config.Setup, log zerolog.Logger) (*Engine, error) {
	if setup == nil || setup.Simulation == nil || setup.Controller == nil {
		return nil, errors.New("engine: simulation and controller are required")
	}
	mt, err := newMetrics(setup.Simulation.Vehicle().Name)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("component", "engine").Logger()

	period := time.Duration(setup.Simulation.DT() * float64(time.Second))
	if period < time.Millisecond {
		period = time.Millisecond
	}

	return &Engine{
		r:           newRunner(setup, log, mt),
		cmdCh:       make(chan Command, 128),
		stateReqCh:  make(chan stateReq, 32),
		seriesReqCh: make(chan seriesReq, 32),
		subscribeCh: make(chan subscribeReq, 32),
		unsubCh:     make(chan chan Snapshot, 32),
		done:        make(chan struct{}),
		period:      period,
		log:         log,
	}, nil
}

// Submit queues a command. It reports false when the queue is full and the
// command was dropped.
func (e *Engine) Submit(cmd Command) bool {
	select {
	case e.cmdCh <- cmd:
		return true
	default:
		e.log.Warn().Str("command", string(cmd.Type())).Msg("command queue full, dropping")
		return false
	}
}

// GetState returns the latest snapshot.
func (e *Engine) GetState(ctx context.Context) (Snapshot, error) {
	req := stateReq{reply: make(chan Snapshot, 1)}
	select {
	case e.stateReqCh <- req:
	case <-e.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case st := <-req.reply:
		return st, nil
	case <-e.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Series returns the recorded time series, or only its most recent sample
// when latest is set.
func (e *Engine) Series(ctx context.Context, latest bool) ([]sim.Sample, error) {
	req := seriesReq{latest: latest, reply: make(chan []sim.Sample, 1)}
	select {
	case e.seriesReqCh <- req:
	case <-e.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case s := <-req.reply:
		return s, nil
	case <-e.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe returns a channel receiving a snapshot per tick. Frames are
// dropped for subscribers that fall behind. The channel is closed after
// unsub is called or when the engine stops.
func (e *Engine) Subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 32)

	select {
	case e.subscribeCh <- subscribeReq{ch: ch}:
	case <-e.done:
		close(ch)
		return ch, func() {}
	case <-ctx.Done():
		close(ch)
		return ch, func() {}
	}

	unsub := func() {
		select {
		case e.unsubCh <- ch:
		case <-e.done:
		}
	}
	return ch, unsub
}

// Run owns the simulation until ctx is cancelled. It must be called once.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	subs := map[chan Snapshot]struct{}{}
	now := time.Now()
	latest := e.r.snapshot(now)

	publish := func(st Snapshot) {
		for ch := range subs {
			select {
			case ch <- st:
			default:
				// slow subscriber -> drop frame
			}
		}
	}

	tick := time.NewTicker(e.period)
	defer tick.Stop()

	e.log.Info().
		Str("runId", latest.RunID).
		Str("vehicle", e.r.sim.Vehicle().Name).
		Dur("period", e.period).
		Msg("engine started")

	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			e.log.Info().Uint64("ticks", e.r.sim.Ticks()).Msg("engine stopped")
			return nil

		case req := <-e.subscribeCh:
			subs[req.ch] = struct{}{}
			req.ch <- latest

		case ch := <-e.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case req := <-e.stateReqCh:
			req.reply <- latest

		case req := <-e.seriesReqCh:
			if req.latest {
				var out []sim.Sample
				if s, ok := e.r.sim.Latest(); ok {
					out = []sim.Sample{s}
				}
				req.reply <- out
			} else {
				req.reply <- e.r.sim.Series()
			}

		case cmd := <-e.cmdCh:
			e.r.handle(cmd)
			latest = e.r.snapshot(now)

		case t := <-tick.C:
			wallDt := t.Sub(now).Seconds()
			if wallDt <= 0 {
				wallDt = e.r.sim.DT()
			}
			now = t

			latest = e.r.tick(wallDt, now)
			publish(latest)
		}
	}
}
