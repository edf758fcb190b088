package tccfg

import (
	"errors"
	"net"
	"strconv"
)

// DefaultRPCPort is the port the HTTP API listens on by default, the one the
// browser front-end posts to.
const DefaultRPCPort = 8000

// RPC holds the options of the HTTP API.
//
//nolint:lll
type RPC struct {
	Listen       string   `long:"listen" description:"Address the HTTP API listens on. If the port is omitted, the default port is used."`
	AllowOrigins []string `long:"alloworigin" description:"Origin allowed to call the API from a browser. May be repeated. Defaults to any origin."`
	MaxBatchSize int      `long:"maxbatchsize" description:"Maximum number of bundles accepted in a single batch request."`
}

// DefaultRPC returns the default HTTP API options.
func DefaultRPC() *RPC {
	port := strconv.Itoa(DefaultRPCPort)

	return &RPC{
		Listen:       net.JoinHostPort("localhost", port),
		MaxBatchSize: 100,
	}
}

// Validate normalizes the listen address.
func (r *RPC) Validate() error {
	if r.Listen == "" {
		return errors.New("rpc.listen must be set")
	}

	if _, _, err := net.SplitHostPort(r.Listen); err != nil {
		r.Listen = net.JoinHostPort(
			r.Listen, strconv.Itoa(DefaultRPCPort),
		)
	}

	if r.MaxBatchSize <= 0 {
		return errors.New("rpc.maxbatchsize must be positive")
	}

	return nil
}
