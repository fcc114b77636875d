package crashpad

import "strings"

// checkNUL rejects strings that cannot cross the C boundary intact.
// C.CString stops at the first NUL, so an embedded NUL in a path or
// URL would silently truncate the value; it must fail as invalid
// configuration before any native call.
func checkNUL(values ...string) error {
	for _, v := range values {
		if strings.ContainsRune(v, 0) {
			return invalidConfig("path contains NUL byte")
		}
	}
	return nil
}
