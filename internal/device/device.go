// Package device defines the boundary between this service and a real
// fingerprint scanner SDK (and, beyond it, a JNI shim into a native
// driver). Neither exists in this repository: the scanner and its JNI
// marshalling are external collaborators whose only relevance to the
// core is the interface they present. Capture is defined here so the
// boundary is visible, not so it can be called from the REST surface.
package device

import (
	"context"
	"errors"
)

// ErrNoBackend is returned by StubDevice.Capture: no native scanner
// backend is wired into this build.
var ErrNoBackend = errors.New("device: no hardware backend configured")

// Scanner captures a raw grayscale probe image of the canonical
// 384x290 geometry from fingerprint hardware.
type Scanner interface {
	Capture(ctx context.Context) ([]byte, error)
}

// StubDevice is a Scanner that always fails. It exists so callers that
// need a Scanner value in tests or dependency wiring have one to reach
// for without pulling in platform-specific USB/JNI code.
type StubDevice struct{}

func (StubDevice) Capture(ctx context.Context) ([]byte, error) {
	return nil, ErrNoBackend
}
