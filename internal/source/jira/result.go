package jira

// Result is the uniform outcome of every client operation. Failures are
// carried as data: Success is false, Error holds the message and Status
// holds the HTTP status code when one was received.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func succeed[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](err error) Result[T] {
	return Result[T]{
		Success: false,
		Error:   err.Error(),
		Status:  statusOf(err),
	}
}
