package colors

import (
	"fmt"
	"image/color"
	"log/slog"
)

// Probe is a throw-away resolution surface owned by a browser host: a
// detached, invisible element for computed-style reads or a 1x1 canvas for
// pixel reads. A probe serves exactly one resolution and is then closed.
type Probe interface {
	// ComputedColor assigns raw as a style property and reads back the
	// computed value.
	ComputedColor(raw string) (string, error)

	// Pixel fills the surface with raw and returns the RGBA8 bytes.
	Pixel(raw string) ([4]uint8, error)

	// Close removes the probe from the host document.
	Close() error
}

// ProbeFactory opens a new probe.
type ProbeFactory func() (Probe, error)

// HostResolver is the browser-hosted ColorSpaceResolver. Every call opens one
// probe and closes it before returning, including when the probe panics, so
// no two probes are ever open at once for serial callers.
type HostResolver struct {
	open   ProbeFactory
	logger *slog.Logger
}

// NewHostResolver creates a HostResolver around the host's probe factory.
func NewHostResolver(open ProbeFactory, logger *slog.Logger) *HostResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HostResolver{open: open, logger: logger}
}

// ResolveComputed implements ColorSpaceResolver.
func (h *HostResolver) ResolveComputed(raw string) (string, error) {
	var out string
	err := h.withProbe(func(p Probe) error {
		var err error
		out, err = p.ComputedColor(raw)
		return err
	})
	return out, err
}

// Rasterize implements ColorSpaceResolver.
func (h *HostResolver) Rasterize(raw string) (color.NRGBA, error) {
	var px [4]uint8
	err := h.withProbe(func(p Probe) error {
		var err error
		px, err = p.Pixel(raw)
		return err
	})
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}, nil
}

func (h *HostResolver) withProbe(fn func(Probe) error) (err error) {
	if h.open == nil {
		return fmt.Errorf("%w: no probe factory", ErrProbeFailure)
	}
	p, err := h.open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailure, err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProbeFailure, r)
		}
		if cerr := p.Close(); cerr != nil {
			h.logger.Warn("failed to remove color probe", "error", cerr)
		}
	}()
	if err := fn(p); err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailure, err)
	}
	return nil
}
