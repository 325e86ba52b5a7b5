package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrCancelled is returned when the operator aborts at a confirmation prompt.
	// It is not a failure: the process exits with code 0.
	ErrCancelled = goerr.New("cancelled by operator")

	ErrInvalidUpdateType   = goerr.New("unsupported update type")
	ErrEnvironmentNotFound = goerr.New("environment not found in config file")
	ErrCustomerNotFound    = goerr.New("customer not found")
	ErrReleaseNotFound     = goerr.New("release not found")
	ErrArtifactDirMissing  = goerr.New("artifact download directory does not exist")
)
