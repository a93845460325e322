package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/fieldbuslab/modserve/device"
	"github.com/fieldbuslab/modserve/image"
	"github.com/fieldbuslab/modserve/pdu"
	"github.com/fieldbuslab/modserve/server"
)

var (
	serveInterval    time.Duration
	serveMonitorPort int
	serveAsync       bool
	serveMaxAddress  uint16
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a demonstration fieldbus device until interrupted.",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval",
		500*time.Millisecond, "cycle trigger interval")
	serveCmd.Flags().IntVar(&serveMonitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 picks a random port")
	serveCmd.Flags().BoolVar(&serveAsync, "async", false,
		"serve requests asynchronously instead of per triggered cycle")
	serveCmd.Flags().Uint16Var(&serveMaxAddress, "max-address", 0xFFFF,
		"highest address of every region")

	rootCmd.AddCommand(serveCmd)
}

// loadEnv overlays flag defaults with the MODSERVE_* environment, optionally
// loaded from a .env file in the working directory.
func loadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("MODSERVE_MONITOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid MODSERVE_MONITOR_PORT %q: %v", v, err)
		}

		serveMonitorPort = port
	}

	if v := os.Getenv("MODSERVE_MODE"); v != "" {
		serveAsync = v == "async"
	}

	if v := os.Getenv("MODSERVE_MAX_ADDRESS"); v != "" {
		addr, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			log.Fatalf("invalid MODSERVE_MAX_ADDRESS %q: %v", v, err)
		}

		serveMaxAddress = uint16(addr)
	}
}

func runServe(_ *cobra.Command, _ []string) {
	loadEnv()

	mode := server.Synchronous
	if serveAsync {
		mode = server.Asynchronous
	}

	img := image.MakeBuilder().
		WithMaxDiscreteInputAddress(serveMaxAddress).
		WithMaxCoilAddress(serveMaxAddress).
		WithMaxInputRegisterAddress(serveMaxAddress).
		WithMaxHoldingRegisterAddress(serveMaxAddress).
		Build()

	transport := &loopbackTransport{}

	d := device.MakeBuilder().
		WithMode(mode).
		WithImage(img).
		WithProcessor(transport).
		WithValidator(demoValidator).
		WithMonitorPort(serveMonitorPort).
		Build("DemoDevice")

	transport.srv = d.Server()

	err := d.Server().Start()
	if err != nil {
		log.Fatal(err)
	}

	atexit.Register(func() {
		err := d.Terminate()
		if err != nil {
			log.Printf("terminate: %v", err)
		}
	})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	counter := uint16(0)

	for {
		select {
		case <-ticker.C:
			counter++
			publishSensorValue(d.Server(), counter)
			queueDemoWrite(transport, counter)

			if mode == server.Synchronous {
				d.Server().Update()
			} else {
				err := d.Server().Serve(context.Background())
				if err != nil {
					log.Printf("serve: %v", err)
				}
			}
		case <-interrupt:
			atexit.Exit(0)
		}
	}
}

// publishSensorValue plays the role of the embedding application writing
// directly into the image between cycles, under the advisory lock.
func publishSensorValue(s *server.Server, value uint16) {
	s.Lock()
	defer s.Unlock()

	err := s.InputRegisters().SetRegister(0, value)
	if err != nil {
		log.Printf("publish: %v", err)
	}
}

// queueDemoWrite queues a holding register write that the loopback transport
// serves on the next cycle.
func queueDemoWrite(t *loopbackTransport, value uint16) {
	t.QueueWrite(
		pdu.Request{
			FunctionCode: pdu.FuncCodeWriteSingleRegister,
			Address:      value % 16,
			Quantity:     1,
		},
		[]byte{byte(value >> 8), byte(value)},
	)
}

// demoValidator rejects writes into the top quarter of the holding register
// range, to demonstrate the validator hook.
func demoValidator(req pdu.Request) pdu.ExceptionCode {
	if req.IsWrite() && req.Address >= 0xC000 {
		return pdu.ExceptionIllegalDataAddress
	}

	return pdu.ExceptionOK
}

// A loopbackTransport is a minimal in-process transport: write requests
// queued by the application are drained by ProcessRequests on the next
// cycle. It stands in for the stream, packet, or serial transports a real
// deployment would attach.
type loopbackTransport struct {
	srv *server.Server

	mu      sync.Mutex
	pending []queuedWrite
}

type queuedWrite struct {
	req  pdu.Request
	data []byte
}

// QueueWrite buffers one write request.
func (t *loopbackTransport) QueueWrite(req pdu.Request, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = append(t.pending, queuedWrite{req: req, data: data})
}

// ProcessRequests drains the buffered requests, validating each before it
// touches the image and reporting every mutation to the change tracker.
func (t *loopbackTransport) ProcessRequests(ctx context.Context) error {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, qw := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if code := t.srv.ValidateRequest(qw.req); code != pdu.ExceptionOK {
			log.Printf("request %+v rejected: %v", qw.req, code)
			continue
		}

		err := t.applyWrite(qw)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *loopbackTransport) applyWrite(qw queuedWrite) error {
	switch qw.req.FunctionCode {
	case pdu.FuncCodeWriteSingleRegister, pdu.FuncCodeWriteMultipleRegisters:
		err := t.srv.HoldingRegisters().WriteRegisters(qw.req.Address, qw.data)
		if err != nil {
			return err
		}

		for i := uint16(0); i < qw.req.Quantity; i++ {
			t.srv.Tracker().RecordRegisterChange(qw.req.Address + i)
		}
	case pdu.FuncCodeWriteSingleCoil, pdu.FuncCodeWriteMultipleCoils:
		err := t.srv.Coils().WriteBits(
			qw.req.Address, int(qw.req.Quantity), qw.data)
		if err != nil {
			return err
		}

		for i := uint16(0); i < qw.req.Quantity; i++ {
			t.srv.Tracker().RecordCoilChange(qw.req.Address + i)
		}
	default:
		log.Printf("request %+v ignored by the loopback transport", qw.req)
	}

	return nil
}
