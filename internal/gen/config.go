package gen

import (
	"github.com/roach88/dslashgen/internal/ir"
)

// Kind selects the artifact family.
type Kind string

const (
	// KindDslash is the full per-site operator kernel.
	KindDslash Kind = "dslash"

	// KindPack extracts projected half spinors for one lattice face.
	KindPack Kind = "pack"
)

// MaxSharedFloats is the number of output floats per site (4 spins × 3
// colors × 2 parts); the shared-storage budget cannot exceed it.
const MaxSharedFloats = 24

// Config is the immutable set of compile-time axes for one artifact.
// It is passed by value into every generation call.
type Config struct {
	Kind   Kind
	Dagger bool

	// Clover and Twisted select the physics variant; at most one is set.
	Clover  bool
	Twisted bool

	// TwistSign is the sign of the twisted-mass rotation, +1 or -1.
	// Zero means +1.
	TwistSign int

	// SharedFloats is how many output floats live in shared storage.
	SharedFloats int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Kind {
	case KindDslash, KindPack:
	default:
		return configError("kind", "unknown kind %q", c.Kind)
	}
	if c.SharedFloats < 0 || c.SharedFloats > MaxSharedFloats {
		return configError("shared_floats", "must be in 0..%d, got %d", MaxSharedFloats, c.SharedFloats)
	}
	if c.Clover && c.Twisted {
		return configError("twisted", "clover and twisted mass are mutually exclusive")
	}
	switch c.TwistSign {
	case 0, 1, -1:
	default:
		return configError("twist_sign", "must be +1 or -1, got %d", c.TwistSign)
	}
	if c.Kind == KindPack {
		if c.Clover || c.Twisted {
			return configError("kind", "pack kernels carry no physics variant")
		}
		if c.SharedFloats != 0 {
			return configError("shared_floats", "pack kernels use no shared storage")
		}
	}
	return nil
}

// Sign returns the effective twist sign.
func (c Config) Sign() int {
	if c.TwistSign == 0 {
		return 1
	}
	return c.TwistSign
}

// Value returns the configuration as a canonical object.
func (c Config) Value() ir.Object {
	return ir.Object{
		"kind":          ir.Str(string(c.Kind)),
		"dagger":        ir.Bool(c.Dagger),
		"clover":        ir.Bool(c.Clover),
		"twisted":       ir.Bool(c.Twisted),
		"twist_sign":    ir.Int(c.Sign()),
		"shared_floats": ir.Int(c.SharedFloats),
	}
}

// Fingerprint identifies the configuration together with the generator
// version, so a fingerprint match implies identical output.
func (c Config) Fingerprint() (string, error) {
	v := c.Value()
	v["generator_version"] = ir.Str(ir.GeneratorVersion)
	return ir.ConfigFingerprint(v)
}
