package server

import (
	"fmt"

	"meisapps/cmdsrv/pkg/client"
)

// Handler processes decrypted packets. It is called on the receiving
// connection's read goroutine: calls for one connection are sequential,
// calls for different connections run concurrently.
type Handler interface {
	OnPacketReceived(c *client.Client, id uint8, data []byte)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(c *client.Client, id uint8, data []byte)

// OnPacketReceived calls f.
func (f HandlerFunc) OnPacketReceived(c *client.Client, id uint8, data []byte) {
	f(c, id, data)
}

// dispatch is the byte-delivery hook of every accepted client.
// A frame is [id][encrypted payload]; frames without payload are dropped.
// Decryption errors are returned and end the connection.
func (s *Server) dispatch(c *client.Client, frame []byte) error {
	if len(frame) < 2 {
		s.logger.WarnMsg("Malformed packet from %s (%d bytes)\n", c.RemoteAddr(), len(frame))
		return nil
	}

	id := frame[0]
	data, err := s.decrypt(frame[1:], s.cfg.Key)
	if err != nil {
		return fmt.Errorf("decrypting packet %#02x: %w", id, err)
	}

	s.logger.VerboseMsg("Packet %#02x from %s (%d bytes)\n", id, c.ID(), len(data))
	s.handler.OnPacketReceived(c, id, data)
	return nil
}
