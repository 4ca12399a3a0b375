//go:build !unix

package web

import "syscall"

// SO_REUSEADDR on Windows allows stealing a bound port, so the default
// listener is kept.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
