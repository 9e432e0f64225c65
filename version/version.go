package version

// Populated via -ldflags at build time.
var (
	Version   = "1.0.0"
	GitHash   = "unknown"
	Timestamp = "unknown"
)
