//go:build ios

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

// startPlatform starts the in-process handler. iOS has no separate
// handler executable: intermediate dumps are captured in-process and
// converted to minidumps on the next launch.
func (c *Client) startPlatform(cfg Config, annotations map[string]string) error {
	if err := checkNUL(cfg.DatabasePath, cfg.URL); err != nil {
		return err
	}

	databaseC := C.CString(cfg.DatabasePath)
	urlC := C.CString(cfg.URL)
	defer C.free(unsafe.Pointer(databaseC))
	defer C.free(unsafe.Pointer(urlC))

	keys, values, count, err := annotationArrays(annotations)
	if err != nil {
		return err
	}
	defer freeStringArray(keys, count)
	defer freeStringArray(values, count)

	ok := C.crashpad_client_start_in_process_handler(
		c.handle, databaseC, urlC, keys, values, C.size_t(count))
	if !bool(ok) {
		return goerrors.New(ErrCodeHandlerStart, "failed to start in-process handler")
	}

	// Upload must be running before intermediate dumps from previous
	// sessions are converted, or they sit in the database unprocessed.
	C.crashpad_client_start_processing_pending_reports()
	C.crashpad_client_process_intermediate_dumps()
	return nil
}

// ProcessIntermediateDumps converts intermediate dumps from previous
// sessions into minidumps. StartWithConfig already does this once at
// startup.
func (c *Client) ProcessIntermediateDumps() {
	C.crashpad_client_process_intermediate_dumps()
}

// StartProcessingPendingReports begins uploading pending reports.
func (c *Client) StartProcessingPendingReports() {
	C.crashpad_client_start_processing_pending_reports()
}
