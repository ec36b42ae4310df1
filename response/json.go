package response

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shravanasati/beacon/headers"
)

// JSON creates a response whose body is data encoded as JSON.
func JSON(statusCode StatusCode, data any) (Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return Response{}, fmt.Errorf("encode json body: %w", err)
	}

	h := headers.NewHeaders()
	h.Add("content-type", "application/json")
	h.Add("content-length", strconv.Itoa(len(body)))
	return Response{statusCode: statusCode, headers: h, body: body}, nil
}
