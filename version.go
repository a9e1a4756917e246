package reactloop

// Version is the release of the module, reported by the CLI.
var Version = "0.1.0"
