//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader samples button lines through the Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealReader requests the given pins as inputs with pull-down, so an
// unwired or floating button reads as released.
func NewRealReader(chipName string, pins []int) (*RealReader, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealReader{chip: chip}
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

// ReadAll samples every line. Buttons pull the line high while pressed.
func (r *RealReader) ReadAll(dst []bool) error {
	for i, line := range r.lines {
		raw, err := line.Value()
		if err != nil {
			return fmt.Errorf("read button pin %d: %w", i, err)
		}
		dst[i] = raw == 1
	}
	return nil
}

// Close releases every requested line and the chip. Lines are left as
// inputs with pull-down, matching boot defaults.
func (r *RealReader) Close() error {
	var errs []error
	for i, line := range r.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin %d: %w", i, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealWriter drives relay or LED lines through the Linux GPIO character
// device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealWriter requests the given pins as outputs driven low.
func NewRealWriter(chipName string, pins []int) (*RealWriter, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	w := &RealWriter{chip: chip}
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		w.lines = append(w.lines, line)
	}
	return w, nil
}

// Set drives one line.
func (w *RealWriter) Set(index int, on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := w.lines[index].SetValue(v); err != nil {
		return fmt.Errorf("set output pin %d: %w", index, err)
	}
	return nil
}

// Close drives every line low, reconfigures it as input with pull-down to
// match boot defaults, and releases it.
func (w *RealWriter) Close() error {
	var errs []error
	for i, line := range w.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear output pin %d: %w", i, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure output pin %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output pin %d: %w", i, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
