package commands

import (
	"errors"
	"os"

	"github.com/spf13/viper"

	"github.com/jmylchreest/scrapemd/pkg/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/scrapemd"
)

// Exit codes for the scrapemd CLI.
const (
	ExitSuccess = 0 // Conversion succeeded
	ExitGeneral = 1 // General or unexpected error
	ExitUsage   = 2 // Invalid arguments or configuration
	ExitIO      = 3 // Source unreadable or output not writable
	ExitFetch   = 4 // Page could not be fetched or rendered
)

// ErrUsage marks command line errors on the root command.
var ErrUsage = errors.New("invalid usage")

// reportedError is a failure already printed as a result object on stdout.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Status returns the process exit status for an error returned by Execute.
// Failures already printed as a result object exit 0 so callers parse the
// error from stdout; --exit-code restores the per-class codes.
func Status(err error) int {
	var reported *reportedError
	if errors.As(err, &reported) && !viper.GetBool("exit_code") {
		return ExitSuccess
	}
	return ExitCode(err)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, fetcher.ErrFetch):
		return ExitFetch
	case errors.Is(err, fetcher.ErrUnsupportedSource),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, os.ErrPermission):
		return ExitIO
	case errors.Is(err, ErrUsage), errors.Is(err, scrapemd.ErrInvalidConfig):
		return ExitUsage
	default:
		return ExitGeneral
	}
}
