//go:build windows

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

// SetHandlerIPCPipe connects to an already-running crashpad_handler
// over its named pipe (\\.\pipe\...), so several processes can share
// one handler. The pipe name is UTF-8 here and widened inside the
// wrapper.
func (c *Client) SetHandlerIPCPipe(pipe string) error {
	pipeC := C.CString(pipe)
	defer C.free(unsafe.Pointer(pipeC))

	if !bool(C.crashpad_client_set_handler_ipc_pipe(c.handle, pipeC)) {
		return goerrors.New(ErrCodeHandlerStart, "failed to connect to handler IPC pipe")
	}
	return nil
}
