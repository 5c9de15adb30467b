package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error / embedding index not found
	ExitDataError   = 3 // Data error (malformed input, structural graph error)
)
