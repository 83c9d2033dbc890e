// Package format renders addresses for dialing and for log output.
package format

import (
	"fmt"
	"net"
	"strconv"
)

// Addr joins host and port, bracketing IPv6 hosts.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Transport renders proto://host:port, the form accepted on the command line.
func Transport(proto fmt.Stringer, host string, port int) string {
	return proto.String() + "://" + Addr(host, port)
}
