package crashpad

import (
	goerrors "github.com/agilira/go-errors"
)

// Error codes returned by the binding layer. The native calls report
// plain success/failure, so the codes classify which shim failed rather
// than why.
const (
	ErrCodeInit          goerrors.ErrorCode = "CRASHPAD_INIT_FAILED"
	ErrCodeHandlerStart  goerrors.ErrorCode = "CRASHPAD_HANDLER_START_FAILED"
	ErrCodeInvalidConfig goerrors.ErrorCode = "CRASHPAD_INVALID_CONFIG"
	ErrCodeUnsupported   goerrors.ErrorCode = "CRASHPAD_UNSUPPORTED_PLATFORM"
)

func invalidConfig(msg string) error {
	return goerrors.New(ErrCodeInvalidConfig, msg)
}
