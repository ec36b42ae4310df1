// Package handlers holds the fixed endpoints served by beacon.
package handlers

import (
	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
	"github.com/shravanasati/beacon/router"
)

const (
	HealthPath = "/health"
	EchoPath   = "/"
)

var (
	healthResponse = response.Text(response.StatusOK, "OK")
	echoResponse   = response.Text(response.StatusOK, "hello world")
)

// Health answers liveness and readiness probes. It ignores the request.
func Health(*request.Request) response.Response {
	return healthResponse
}

// Echo answers with a constant greeting. It does not reflect the request.
func Echo(*request.Request) response.Response {
	return echoResponse
}

// Routes returns the route table of the service, with id served on
// WhoamiPath.
func Routes(id Identity) []router.Route {
	return []router.Route{
		{Path: HealthPath, Handler: Health},
		{Path: EchoPath, Handler: Echo},
		{Path: WhoamiPath, Handler: Whoami(id)},
	}
}
