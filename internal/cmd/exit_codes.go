package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	fluent "github.com/thewaterfall/fluent-go"
)

// Exit codes for scripting against the CLI.
const (
	ExitOK       = 0
	ExitGeneric  = 1
	ExitUsage    = 2
	ExitIO       = 3
	ExitMapping  = 4
	ExitHTTPFail = 6
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return ExitOK
	}

	var ioErr *fluent.IOError
	if errors.As(err, &ioErr) {
		return ExitIO
	}

	var mapErr *fluent.MappingError
	if errors.As(err, &mapErr) {
		return ExitMapping
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return ExitHTTPFail
	}

	if isUsageError(err) {
		return ExitUsage
	}
	return ExitGeneric
}

// isUsageError recognizes cobra/pflag parse failures and our own
// pre-dispatch argument rejections by message, since neither layer
// exposes typed errors for them.
func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"requires at least",
		"accepts at most",
		"unknown http method",
		"mutually exclusive",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
