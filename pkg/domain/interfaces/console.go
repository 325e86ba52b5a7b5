package interfaces

// Console is the operator-facing terminal
type Console interface {
	// Printf writes operator output
	Printf(format string, args ...any)

	// Confirm blocks until the operator hits Enter; Ctrl-C returns types.ErrCancelled
	Confirm(prompt string) error
}
