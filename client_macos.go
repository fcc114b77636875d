//go:build darwin && !ios

package crashpad

/*
#include "wrapper.h"
*/
import "C"

import (
	goerrors "github.com/agilira/go-errors"
)

// UseSystemDefaultHandler hands crash handling back to the macOS
// system crash reporter (ReportCrash). Mainly useful in tests and in
// child processes that must not inherit the Crashpad handler.
func (c *Client) UseSystemDefaultHandler() error {
	if !bool(C.crashpad_client_use_system_default_handler(c.handle)) {
		return goerrors.New(ErrCodeUnsupported, "system default handler unavailable")
	}
	return nil
}
