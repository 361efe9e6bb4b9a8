package variant

import (
	"fmt"

	"github.com/roach88/dslashgen/internal/ir"
)

// Manifest describes a completed run as a canonical object.
func Manifest(r *Report) ir.Object {
	artifacts := make(ir.List, 0, len(r.Results))
	for _, res := range r.Results {
		artifacts = append(artifacts, ir.Object{
			"name":         ir.Str(res.Name),
			"file":         ir.Str(res.File),
			"config":       res.Config.Value(),
			"fingerprint":  ir.Str(res.Fingerprint),
			"content_hash": ir.Str(res.ContentHash),
			"bytes":        ir.Int(res.Bytes),
		})
	}
	return ir.Object{
		"manifest_version":  ir.Str(ir.ManifestVersion),
		"generator_version": ir.Str(ir.GeneratorVersion),
		"run_id":            ir.Str(r.RunID),
		"source":            ir.Str(r.Source),
		"artifacts":         artifacts,
	}
}

// WriteManifest writes the canonical JSON manifest of r to path and
// returns its hash.
func WriteManifest(path string, r *Report) (string, error) {
	m := Manifest(r)
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	hash, err := ir.ManifestHash(m)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	return hash, nil
}
