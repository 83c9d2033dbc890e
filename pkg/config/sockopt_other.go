//go:build !unix

package config

import "syscall"

// Windows allows port hijacking with SO_REUSEADDR, so the default socket options are kept.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
