package cli

import (
	"errors"

	"github.com/egorlepa/mullctl/internal/platform"
	"github.com/egorlepa/mullctl/internal/tunnel"
	"github.com/egorlepa/mullctl/internal/verify"
)

// Process exit codes, one per failure class.
const (
	ExitOK          = 0
	ExitError       = 1 // usage or unclassified
	ExitLaunch      = 2 // external tool missing or could not run
	ExitNonZero     = 3 // external tool ran and failed
	ExitNetwork     = 4 // verification request failed
	ExitMalformed   = 5 // verification response unusable
	ExitPersistence = 6 // config dir files unreadable or unwritable
	ExitLocked      = 7 // another invocation holds the lock
	ExitNotVerified = 8 // verification ran, no exit IP
)

// ExitCode maps an error returned by a command to its exit code.
func ExitCode(err error) int {
	var (
		launch    *platform.LaunchError
		exit      *platform.ExitError
		network   *verify.NetworkError
		malformed *verify.MalformedResponseError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, platform.ErrLocked):
		return ExitLocked
	case errors.As(err, &launch):
		return ExitLaunch
	case errors.As(err, &exit):
		return ExitNonZero
	case errors.As(err, &network):
		return ExitNetwork
	case errors.As(err, &malformed):
		return ExitMalformed
	case errors.Is(err, platform.ErrPersistence):
		return ExitPersistence
	case errors.Is(err, tunnel.ErrNotVerified):
		return ExitNotVerified
	}
	return ExitError
}
