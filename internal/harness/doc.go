// Package harness runs conformance scenarios against generated kernels.
//
// A scenario names one generator configuration and a list of structural
// assertions. The harness builds the kernel tree, summarizes it with
// gen.Inspect and evaluates every assertion against the summary, so
// scenarios check the shape of an artifact rather than its text.
//
// # Scenario Format
//
//	name: wilson_clover
//	description: "Clover kernel with eight shared floats"
//	config:
//	  clover: true
//	  shared_floats: 8
//	assertions:
//	  - type: summary
//	    expect: { shared_outputs: 8, local_outputs: 16 }
//	  - type: direction
//	    index: 6
//	    expect: { projector: P3-, load: READ_SPINOR_DOWN }
//	  - type: sequence
//	    of: undef_order
//	    values: [scratch, in, gauge, gauge_conj, clover, out]
//	  - type: no_leaks
//
// A scenario may name an entry of the embedded artifact set with
// "variant: wilson_dslash" instead of spelling out a config block.
//
// # Assertion Types
//
//   - summary: subset match against the summary fields
//   - direction: subset match against one direction block
//   - face: subset match against one pack face
//   - count: length of a summary list (directions, faces, includes, leaked)
//   - sequence: exact match of an ordered summary list
//   - no_leaks: every defined macro is undefined again
//   - deterministic: two generations produce identical bytes
//
// # Golden Snapshots
//
// RunWithGolden stores the structural shape of a scenario under
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
