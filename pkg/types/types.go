package types

type ErrorResponse struct {
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

type PaginationResponse struct {
	Total int64       `json:"total"`
	Data  interface{} `json:"data"`
}
