//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "fmt"

func ensureInit() error {
	return fmt.Errorf("clipboard is not supported on this platform")
}

func writeFormat(format, []byte) error {
	return ensureInit()
}
