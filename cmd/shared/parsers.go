package shared

import (
	"fmt"
	"regexp"
	"strconv"

	"meisapps/cmdsrv/pkg/config"
)

var transportRe = regexp.MustCompile(`^(tcp|ws|udp|mux)://([^:]*):(\d+)$`)

// ParseTransport parses a transport string in the format "protocol://host:port"
// where protocol is one of tcp, ws, udp or mux. The host can be empty or "*" to
// bind to all interfaces. Port 0 is accepted; listeners then pick a free port.
func ParseTransport(s string) (proto config.Protocol, host string, port int, err error) {
	matches := transportRe.FindStringSubmatch(s)
	if len(matches) != 4 {
		err = parsingError(s)
		return
	}

	proto, err = config.ParseProtocol(matches[1])
	if err != nil {
		err = parsingError(s)
		return
	}

	host = matches[2]
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[3])
	if err != nil || port < 0 || port > 65535 {
		err = parsingError(s)
		return
	}

	return
}

// ParseID parses a packet id, decimal or 0x-prefixed hex, in the range 0-255.
func ParseID(s string) (uint8, error) {
	id, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("parsing packet id %q: must be a number between 0 and 255", s)
	}
	return uint8(id), nil
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'protocol://host:port', where protocol = tcp|ws|udp|mux", s)
}
