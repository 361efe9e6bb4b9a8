package ir

// Version constants stamped into manifests and ledger records.
const (
	// ManifestVersion is the manifest schema version.
	ManifestVersion = "1"

	// GeneratorVersion changes whenever emitted text may change for an
	// unchanged configuration.
	GeneratorVersion = "0.1.0"
)
