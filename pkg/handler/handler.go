// Package handler provides the packet handlers used by the serve command.
package handler

import (
	"meisapps/cmdsrv/pkg/client"
	"meisapps/cmdsrv/pkg/log"
	"meisapps/cmdsrv/pkg/server"
)

// Logging returns a handler that logs every packet it sees.
// Payloads are only printed when the logger is verbose.
func Logging(logger *log.Logger) server.Handler {
	return server.HandlerFunc(func(c *client.Client, id uint8, data []byte) {
		logger.InfoMsg("Packet %#02x from %s: %d bytes\n", id, c.ID(), len(data))
		logger.VerboseMsg("%q\n", data)
	})
}

// Echo returns a handler that sends each packet back to its sender,
// encrypted with key. A failed reply closes that connection.
func Echo(key string, logger *log.Logger) server.Handler {
	return server.HandlerFunc(func(c *client.Client, id uint8, data []byte) {
		if err := c.Send(id, data, key); err != nil {
			logger.ErrorMsg("Echo to %s: %s\n", c.ID(), err)
			c.Close()
		}
	})
}

// Chain calls each handler in order. Nil handlers are skipped.
func Chain(hs ...server.Handler) server.Handler {
	return server.HandlerFunc(func(c *client.Client, id uint8, data []byte) {
		for _, h := range hs {
			if h != nil {
				h.OnPacketReceived(c, id, data)
			}
		}
	})
}
