// Package device assembles a complete fieldbus device: the process image,
// the server core, and the optional monitoring and change-recording
// services.
package device

import (
	"github.com/fieldbuslab/modserve/image"
	"github.com/fieldbuslab/modserve/monitoring"
	"github.com/fieldbuslab/modserve/recording"
	"github.com/fieldbuslab/modserve/server"
)

// A Device bundles the services required to run a fieldbus server.
type Device struct {
	id string

	server       *server.Server
	dataRecorder recording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the unique id of the device.
func (d *Device) ID() string {
	return d.id
}

// Server returns the fieldbus server of the device.
func (d *Device) Server() *server.Server {
	return d.server
}

// Image returns the process image of the device.
func (d *Device) Image() *image.Image {
	return d.server.Image()
}

// DataRecorder returns the recorder change notifications are logged to, or
// nil when recording is off.
func (d *Device) DataRecorder() recording.DataRecorder {
	return d.dataRecorder
}

// Monitor returns the monitor of the device, or nil when monitoring is off.
func (d *Device) Monitor() *monitoring.Monitor {
	return d.monitor
}

// Terminate disposes the server and closes the recorder.
func (d *Device) Terminate() error {
	err := d.server.Dispose()

	if d.dataRecorder != nil {
		d.dataRecorder.Close()
	}

	return err
}
