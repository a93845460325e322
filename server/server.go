// Package server implements the runtime core of a fieldbus server: the
// lifecycle controller and dispatch scheduler that decide when the
// transport-specific processing routine runs against the process image, the
// per-cycle change tracker, and the request validator hook.
//
// The package does not frame, decode, or interpret wire traffic. Transport
// subsystems implement RequestProcessor and are invoked either per request
// (asynchronous mode) or once per externally triggered cycle (synchronous
// mode).
package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fieldbuslab/modserve/image"
)

// ErrAlreadyStarted is returned by Start on a server that is already
// running.
var ErrAlreadyStarted = errors.New("server already started")

// ErrNotStarted is returned by Serve on a server that has not been started.
var ErrNotStarted = errors.New("server not started")

// A Mode selects the execution model of a server. It is fixed at
// construction.
type Mode int

// The two execution models.
const (
	// Asynchronous servers run the processing routine immediately, on
	// whatever goroutine delivers a request.
	Asynchronous Mode = iota

	// Synchronous servers run the processing routine only when Update is
	// called, on a single background goroutine.
	Synchronous
)

func (m Mode) String() string {
	switch m {
	case Asynchronous:
		return "Asynchronous"
	case Synchronous:
		return "Synchronous"
	default:
		return "UnknownMode"
	}
}

// Cycle gating states, see Update and cycleLoop.
const (
	cycleIdle int32 = iota
	cyclePending
	cycleRunning
)

// A Server owns a process image and schedules the processing cycles that
// serve client requests against it.
//
// The embedded mutex is the advisory lock over the process image. The server
// never acquires it; embedding applications take it around direct region
// access in synchronous mode to avoid tearing with an in-flight cycle. The
// regions themselves carry no internal locking.
type Server struct {
	HookableBase
	sync.Mutex

	name      string
	mode      Mode
	image     *image.Image
	tracker   *ChangeTracker
	processor RequestProcessor
	validator atomic.Pointer[RequestValidator]

	// cycleLock makes sure at most one processing invocation runs at a
	// time, in either mode.
	cycleLock sync.Mutex

	lifecycleLock sync.Mutex
	started       bool
	cancel        context.CancelFunc
	cycleSignal   chan struct{}
	done          chan struct{}
	loopErr       error
	stopSequences int

	cycleState atomic.Int32
	cycleCount atomic.Uint64

	disposeOnce sync.Once
}

// Name returns the name of the server.
func (s *Server) Name() string {
	return s.name
}

// Mode returns the execution model of the server.
func (s *Server) Mode() Mode {
	return s.mode
}

// Image returns the process image owned by the server.
func (s *Server) Image() *image.Image {
	return s.image
}

// DiscreteInputs returns the discrete input region of the process image.
func (s *Server) DiscreteInputs() *image.BitRegion {
	return s.image.DiscreteInputs()
}

// Coils returns the coil region of the process image.
func (s *Server) Coils() *image.BitRegion {
	return s.image.Coils()
}

// InputRegisters returns the input register region of the process image.
func (s *Server) InputRegisters() *image.RegisterRegion {
	return s.image.InputRegisters()
}

// HoldingRegisters returns the holding register region of the process image.
func (s *Server) HoldingRegisters() *image.RegisterRegion {
	return s.image.HoldingRegisters()
}

// Tracker returns the change tracker the processing routine reports
// mutations to.
func (s *Server) Tracker() *ChangeTracker {
	return s.tracker
}

// CycleCount returns the number of processing invocations completed so far.
func (s *Server) CycleCount() uint64 {
	return s.cycleCount.Load()
}

// SetChangeNotificationsEnabled turns the change notifications on or off.
// While off, no addresses accumulate and no notification fires.
func (s *Server) SetChangeNotificationsEnabled(enabled bool) {
	s.tracker.SetEnabled(enabled)
}

// ChangeNotificationsEnabled reports whether change notifications are on.
func (s *Server) ChangeNotificationsEnabled() bool {
	return s.tracker.Enabled()
}

// SetProcessor registers the transport-specific processing routine. It must
// be called before Start.
func (s *Server) SetProcessor(p RequestProcessor) {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	if s.started {
		panic("cannot change the request processor while the server is running")
	}

	s.processor = p
}

// Start brings the server up. In synchronous mode it spawns the background
// cycle goroutine, which stays parked until Update is called. Starting an
// already-started server returns ErrAlreadyStarted.
func (s *Server) Start() error {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if s.processor == nil {
		panic("no request processor registered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.started = true

	if s.mode == Synchronous {
		s.cycleSignal = make(chan struct{}, 1)
		s.done = make(chan struct{})
		s.loopErr = nil
		s.cycleState.Store(cycleIdle)

		go s.cycleLoop(ctx, s.cycleSignal, s.done)
	}

	return nil
}

// Stop shuts the server down. It is idempotent and safe to call before
// Start. In synchronous mode it cancels the background goroutine, wakes it
// if it is parked on the cycle wait, and joins it; a join that only observed
// the cancellation is normal shutdown. A processing failure the background
// goroutine ran into that was not otherwise observed is returned here.
//
// Stop blocks until an in-flight cycle returns. A processing routine that
// ignores cancellation therefore hangs shutdown; the core imposes no
// timeout.
func (s *Server) Stop() error {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	if !s.started {
		return nil
	}

	s.started = false
	s.stopSequences++
	s.cancel()

	if s.mode == Synchronous {
		// Wake a goroutine parked on the cycle wait. The loop re-checks
		// cancellation before processing, so this never runs an extra
		// cycle.
		select {
		case s.cycleSignal <- struct{}{}:
		default:
		}

		<-s.done

		err := s.loopErr
		s.loopErr = nil

		return err
	}

	return nil
}

// Dispose permanently shuts the server down. It is idempotent and runs the
// stop sequence exactly once even when invoked multiple times.
func (s *Server) Dispose() error {
	var err error

	s.disposeOnce.Do(func() {
		err = s.Stop()
	})

	return err
}

// Serve runs one processing invocation on the caller's goroutine. Transport
// subsystems call it as soon as they deliver a request in asynchronous mode.
// Failures from the processing routine propagate to the caller. Concurrent
// callers are serialized; a cycle never runs concurrently with another.
func (s *Server) Serve(ctx context.Context) error {
	if s.mode != Asynchronous {
		panic("Serve is only available in asynchronous mode")
	}

	s.lifecycleLock.Lock()
	started := s.started
	s.lifecycleLock.Unlock()

	if !started {
		return ErrNotStarted
	}

	return s.runCycle(ctx)
}

// Update requests one processing cycle from a synchronous server. It is a
// no-op in asynchronous mode, on a stopped server, and while a cycle is
// already pending or executing: flooding Update cannot queue more than one
// outstanding cycle. Update never blocks.
func (s *Server) Update() {
	if s.mode == Asynchronous {
		return
	}

	s.lifecycleLock.Lock()
	started := s.started
	signal := s.cycleSignal
	s.lifecycleLock.Unlock()

	if !started {
		return
	}

	if !s.cycleState.CompareAndSwap(cycleIdle, cyclePending) {
		return
	}

	select {
	case signal <- struct{}{}:
	default:
	}
}

// cycleLoop is the single background execution context of a synchronous
// server. It parks on the cycle signal, runs exactly one processing
// invocation per wake-up, and exits on cancellation without serving a
// pending signal. A non-cancellation failure from the processing routine
// ends the loop and surfaces at the next Stop.
func (s *Server) cycleLoop(
	ctx context.Context,
	signal chan struct{},
	done chan struct{},
) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-signal:
		}

		if ctx.Err() != nil {
			return
		}

		s.cycleState.Store(cycleRunning)
		err := s.runCycle(ctx)
		s.cycleState.Store(cycleIdle)

		if err != nil && !errors.Is(err, context.Canceled) {
			s.loopErr = err
			return
		}
	}
}

// runCycle performs one processing invocation: reset the tracker, run the
// processing routine, then emit the change notifications on this goroutine.
func (s *Server) runCycle(ctx context.Context) error {
	s.cycleLock.Lock()
	defer s.cycleLock.Unlock()

	s.tracker.Reset()

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeCycle})

	err := s.processor.ProcessRequests(ctx)

	s.cycleCount.Add(1)
	s.emitChanges()

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterCycle})

	return err
}

// emitChanges fires at most one notification per region, and none for an
// empty change set.
func (s *Server) emitChanges() {
	if !s.tracker.Enabled() {
		return
	}

	if regs := s.tracker.RegisterChanges(); len(regs) > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosRegistersChanged,
			Item: ChangeSet{
				Region:    image.HoldingRegisters,
				Addresses: regs,
			},
		})
	}

	if coils := s.tracker.CoilChanges(); len(coils) > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosCoilsChanged,
			Item: ChangeSet{
				Region:    image.Coils,
				Addresses: coils,
			},
		})
	}
}
