package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing or invalid settings)
	ExitDataError     = 3 // Data error (malformed input, validation failure)
	ExitNotFound      = 4 // Faculty or publication not found
	ExitProviderError = 5 // Google Scholar unavailable, unauthorized or rate limited
)
