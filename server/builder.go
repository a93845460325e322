package server

import "github.com/fieldbuslab/modserve/image"

// Builder can be used to build a server.
type Builder struct {
	mode                 Mode
	image                *image.Image
	processor            RequestProcessor
	validator            RequestValidator
	notificationsEnabled bool
}

// MakeBuilder creates a new builder. The default server is synchronous, has
// change notifications enabled, and owns a full-range process image.
func MakeBuilder() Builder {
	return Builder{
		mode:                 Synchronous,
		notificationsEnabled: true,
	}
}

// WithMode sets the execution model of the server.
func (b Builder) WithMode(mode Mode) Builder {
	b.mode = mode
	return b
}

// WithImage sets the process image the server owns. Without this option the
// server builds a full-range image.
func (b Builder) WithImage(img *image.Image) Builder {
	b.image = img
	return b
}

// WithProcessor sets the transport-specific processing routine. A processor
// that needs a reference to the server can instead be registered with
// SetProcessor after Build.
func (b Builder) WithProcessor(p RequestProcessor) Builder {
	b.processor = p
	return b
}

// WithValidator sets the request validator hook.
func (b Builder) WithValidator(v RequestValidator) Builder {
	b.validator = v
	return b
}

// WithoutChangeNotifications builds the server with change notifications
// disabled.
func (b Builder) WithoutChangeNotifications() Builder {
	b.notificationsEnabled = false
	return b
}

// Build builds the server. Mode and region capacities are immutable
// afterwards.
func (b Builder) Build(name string) *Server {
	img := b.image
	if img == nil {
		img = image.MakeBuilder().Build()
	}

	s := &Server{
		name:      name,
		mode:      b.mode,
		image:     img,
		tracker:   NewChangeTracker(),
		processor: b.processor,
	}

	s.tracker.SetEnabled(b.notificationsEnabled)

	if b.validator != nil {
		s.SetValidator(b.validator)
	}

	return s
}
