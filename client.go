package crashpad

/*
#cgo CPPFLAGS: -I${SRCDIR}/wrapper
#cgo LDFLAGS: -L${SRCDIR}/dist/lib
#cgo LDFLAGS: -lcrashpad_wrapper -lclient -lcommon -lutil -lformat -lbase
#cgo darwin LDFLAGS: -lmig_output -lc++ -framework Foundation -framework Security -framework CoreFoundation
#cgo darwin,!ios LDFLAGS: -framework IOKit -lbsm
#cgo ios LDFLAGS: -lsnapshot -lcontext -lminidump -lz -framework UIKit
#cgo linux,!android LDFLAGS: -lstdc++ -lpthread
#cgo android LDFLAGS: -lc++_static -lc++abi -llog -ldl
#cgo windows LDFLAGS: -lsnapshot -lminidump -lcontext -lcompat -lnet -lgetopt -lzlib -ladvapi32 -lkernel32 -luser32 -lwinmm

#include <stdlib.h>
#include "wrapper.h"
*/
import "C"

import (
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	goerrors "github.com/agilira/go-errors"
)

// Client wraps a native CrashpadClient handle.
//
// The native client is thread-safe; once started, a Client may be
// shared freely across goroutines.
type Client struct {
	handle C.crashpad_client_t
}

// NewClient allocates a native CrashpadClient.
func NewClient() (*Client, error) {
	handle := C.crashpad_client_new()
	if handle == nil {
		return nil, goerrors.New(ErrCodeInit, "failed to initialize Crashpad client")
	}
	return &Client{handle: handle}, nil
}

// Close releases the native client. The handler process, if any, keeps
// running; Close only frees the client-side handle. Safe to call more
// than once.
func (c *Client) Close() {
	if c.handle != nil {
		C.crashpad_client_delete(c.handle)
		c.handle = nil
	}
}

// StartWithConfig resolves the handler location from cfg, creates the
// database and metrics directories, and starts crash monitoring. On
// iOS this starts the in-process handler and schedules processing of
// reports left over from previous sessions.
func (c *Client) StartWithConfig(cfg Config, annotations map[string]string) error {
	for _, dir := range []string{cfg.DatabasePath, cfg.MetricsPath} {
		if parent := filepath.Dir(dir); dir != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return invalidConfig("create data directory: " + err.Error())
			}
		}
	}
	return c.startPlatform(cfg, annotations)
}

// StartHandler starts the external crashpad_handler process directly,
// bypassing Config's discovery. url may be empty for local-only crash
// collection.
func (c *Client) StartHandler(handlerPath, databasePath, metricsPath, url string, annotations map[string]string) error {
	if err := checkNUL(handlerPath, databasePath, metricsPath, url); err != nil {
		return err
	}

	handlerC := C.CString(handlerPath)
	databaseC := C.CString(databasePath)
	metricsC := C.CString(metricsPath)
	urlC := C.CString(url)
	defer func() {
		C.free(unsafe.Pointer(handlerC))
		C.free(unsafe.Pointer(databaseC))
		C.free(unsafe.Pointer(metricsC))
		C.free(unsafe.Pointer(urlC))
	}()

	keys, values, count, err := annotationArrays(annotations)
	if err != nil {
		return err
	}
	defer freeStringArray(keys, count)
	defer freeStringArray(values, count)

	ok := C.crashpad_client_start_handler(
		c.handle,
		handlerC, databaseC, metricsC, urlC,
		keys, values, C.size_t(count),
		nil, 0,
	)
	if !bool(ok) {
		return goerrors.New(ErrCodeHandlerStart, "failed to start crashpad handler")
	}
	return nil
}

// DumpWithoutCrash writes a minidump of the current context without
// terminating the process. Useful for capturing diagnostic state on
// non-fatal errors.
func (c *Client) DumpWithoutCrash() {
	C.crashpad_dump_without_crash()
}

// annotationArrays builds parallel C arrays for the annotation map.
// The returned arrays are C-allocated so they may cross the cgo
// boundary inside other C allocations.
func annotationArrays(annotations map[string]string) (keys, values **C.char, count int, err error) {
	count = len(annotations)
	if count == 0 {
		return nil, nil, 0, nil
	}

	for k, v := range annotations {
		if strings.ContainsRune(k, 0) || strings.ContainsRune(v, 0) {
			return nil, nil, 0, invalidConfig("annotation contains NUL byte")
		}
	}

	ptrSize := unsafe.Sizeof((*C.char)(nil))
	keys = (**C.char)(C.malloc(C.size_t(count) * C.size_t(ptrSize)))
	values = (**C.char)(C.malloc(C.size_t(count) * C.size_t(ptrSize)))

	keySlice := unsafe.Slice(keys, count)
	valueSlice := unsafe.Slice(values, count)
	i := 0
	for k, v := range annotations {
		keySlice[i] = C.CString(k)
		valueSlice[i] = C.CString(v)
		i++
	}
	return keys, values, count, nil
}

func freeStringArray(arr **C.char, count int) {
	if arr == nil {
		return
	}
	slice := unsafe.Slice(arr, count)
	for _, s := range slice {
		C.free(unsafe.Pointer(s))
	}
	C.free(unsafe.Pointer(arr))
}
