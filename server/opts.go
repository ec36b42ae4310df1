package server

import (
	"time"

	"go.uber.org/zap"
)

// DefaultAddress is used when Options.Address is empty.
const DefaultAddress = ":3000"

// Options configures a Server. Timeouts are disabled when zero.
type Options struct {
	// The address for the server to listen on. Port 0 picks an ephemeral port.
	Address string

	// Logger receives connection level logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// OnError is called with every fault caught at the server boundary: a
	// handler panic, an empty response, or a failed response write. The
	// connection is closed afterwards. Defaults to logging
	// "internal server error <message>" at error level.
	OnError func(error)

	// ReadTimeout bounds reading a request once its first byte has arrived.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration

	// IdleTimeout bounds the wait for the next request on a kept-alive
	// connection.
	IdleTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Address == "" {
		o.Address = DefaultAddress
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.OnError == nil {
		logger := o.Logger
		o.OnError = func(err error) {
			logger.Error("internal server error " + err.Error())
		}
	}
	return o
}
