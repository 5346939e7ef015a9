package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener the authentication API rides on,
// plain TCP or TLS depending on deployment configuration.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is the serving surface of the authentication API. Start
// blocks until the listener closes; Stop drains in-flight requests
// within the context deadline.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
