package device

import (
	"github.com/rs/xid"

	"github.com/fieldbuslab/modserve/image"
	"github.com/fieldbuslab/modserve/monitoring"
	"github.com/fieldbuslab/modserve/recording"
	"github.com/fieldbuslab/modserve/server"
)

// Builder can be used to build a device.
type Builder struct {
	mode           server.Mode
	img            *image.Image
	processor      server.RequestProcessor
	validator      server.RequestValidator
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
}

// MakeBuilder creates a new builder. The default device runs a synchronous
// server with monitoring and change recording enabled.
func MakeBuilder() Builder {
	return Builder{
		mode:        server.Synchronous,
		monitorOn:   true,
		recordingOn: true,
	}
}

// WithMode sets the execution model of the server.
func (b Builder) WithMode(mode server.Mode) Builder {
	b.mode = mode
	return b
}

// WithImage sets the process image of the device.
func (b Builder) WithImage(img *image.Image) Builder {
	b.img = img
	return b
}

// WithProcessor sets the transport-specific processing routine.
func (b Builder) WithProcessor(p server.RequestProcessor) Builder {
	b.processor = p
	return b
}

// WithValidator sets the request validator hook.
func (b Builder) WithValidator(v server.RequestValidator) Builder {
	b.validator = v
	return b
}

// WithoutMonitoring sets the device to not start a monitor.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording sets the device to not record change notifications.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the device.
func (b Builder) Build(name string) *Device {
	b.parametersMustBeValid()

	d := &Device{
		id: xid.New().String(),
	}

	serverBuilder := server.MakeBuilder().
		WithMode(b.mode)

	if b.img != nil {
		serverBuilder = serverBuilder.WithImage(b.img)
	}

	if b.processor != nil {
		serverBuilder = serverBuilder.WithProcessor(b.processor)
	}

	if b.validator != nil {
		serverBuilder = serverBuilder.WithValidator(b.validator)
	}

	d.server = serverBuilder.Build(name)

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "modserve_" + d.id
		}

		d.dataRecorder = recording.NewDataRecorder(outputPath)
		logger := recording.NewChangeLogger(d.dataRecorder, "changes")
		d.server.AcceptHook(logger)
	}

	if b.monitorOn {
		d.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			d.monitor.WithPortNumber(b.monitorPort)
		}

		d.monitor.RegisterServer(d.server)
		d.monitor.StartServer()
	}

	return d
}
