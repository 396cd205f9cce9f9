// Package shaders holds the WGSL sources of the lighting passes.
package shaders

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

const (
	VertexEntryPoint   = "vertex"
	FragmentEntryPoint = "fragment"
)

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed lighting.wgsl
var LightingWGSL string

//go:embed blit.wgsl
var BlitWGSL string

// ErrValidatorUnsupported means naga could not check the source because it
// uses a feature naga does not implement yet. The source may still be valid.
var ErrValidatorUnsupported = errors.New("shader validator does not support this source")

// Validate compiles src with naga and reports syntax and type errors.
func Validate(src string) error {
	if strings.TrimSpace(src) == "" {
		return errors.New("empty shader source")
	}
	if _, err := naga.Compile(src); err != nil {
		if isValidatorGap(err.Error()) {
			return fmt.Errorf("%w: %v", ErrValidatorUnsupported, err)
		}
		return fmt.Errorf("invalid WGSL: %w", err)
	}
	return nil
}

// isValidatorGap matches naga errors about its own missing features. Lowering
// errors come from the SPIR-V backend, after the source already parsed and
// type-checked.
func isValidatorGap(msg string) bool {
	for _, gap := range []string{"not yet implemented", "not supported", "unsupported", "lowering"} {
		if strings.Contains(msg, gap) {
			return true
		}
	}
	return false
}
