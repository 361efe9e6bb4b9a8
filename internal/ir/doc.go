// Package ir provides the intermediate representation shared by the kernel
// generator and the renderer, plus the canonical value encoding used to
// fingerprint generator configurations and artifacts.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Registers are typed keys (Reg); identifiers are chosen by one resolver
//   - Nodes carry structure, never pre-rendered multi-line text
//   - NO float types in canonical values - use int64 for numbers
//   - All JSON tags use snake_case
package ir
