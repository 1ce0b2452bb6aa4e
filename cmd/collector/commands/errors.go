package commands

import "errors"

// errConfig and errVerification mark the two fatal-startup error classes
// from spec.md §7 so ExitCodeFor can select the right process exit code
// without start.go needing to call os.Exit itself.
var (
	errConfig       = errors.New("configuration error")
	errVerification = errors.New("startup verification failed")
)

func isConfigError(err error) bool {
	return errors.Is(err, errConfig)
}

func isVerificationError(err error) bool {
	return errors.Is(err, errVerification)
}
