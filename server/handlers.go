package server

import (
	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
)

// Handler takes a request and returns a response. A handler that panics is
// treated as a fault: the server reports it and drops the connection.
type Handler func(*request.Request) response.Response
