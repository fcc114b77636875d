//go:build darwin

package crashpad

/*
#include <stdlib.h>
#include "wrapper.h"
*/
import "C"

import (
	"unsafe"

	goerrors "github.com/agilira/go-errors"
)

// SetHandlerMachService connects to a crashpad_handler registered as a
// Mach service, instead of spawning a new handler process. The service
// name must match the handler's --mach-service argument.
func (c *Client) SetHandlerMachService(serviceName string) error {
	nameC := C.CString(serviceName)
	defer C.free(unsafe.Pointer(nameC))

	if !bool(C.crashpad_client_set_handler_mach_service(c.handle, nameC)) {
		return goerrors.New(ErrCodeHandlerStart, "failed to set handler Mach service")
	}
	return nil
}
