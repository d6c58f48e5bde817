package dependence

import "unsafe"

// ptr extracts the address of an interned variable-name pointer, for
// pointer-identity comparison instead of string comparison on the hot
// path. Isolated in its own file since it's the one place this package
// reaches for unsafe.
func ptr(s *string) unsafe.Pointer {
	return unsafe.Pointer(s)
}
