package handler

// InfoResponse is the response body for GET /info.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Roots  *int   `json:"roots,omitempty"`
}

// ErrorResponse is the error envelope written for every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
