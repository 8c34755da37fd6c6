package gabb

import (
	"context"
	"net/http"
)

// Todo is a task pushed to a device. The service only exposes reading and
// deleting them from this API; creation happens elsewhere.
type Todo struct {
	ID        int64  `json:"id"`
	DeviceID  int64  `json:"deviceId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt Millis `json:"createdAt"`
}

// Todos returns the tasks for every device on the account.
func (c *Client) Todos(ctx context.Context) ([]Todo, error) {
	var env envelope[[]Todo]
	if err := c.do(ctx, http.MethodGet, "todo", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteTodo removes a task from a device. The service addresses the task in
// the request body rather than the path.
func (c *Client) DeleteTodo(ctx context.Context, deviceID, todoID int64) error {
	payload := struct {
		DeviceID int64 `json:"deviceId"`
		TodoID   int64 `json:"todoId"`
	}{DeviceID: deviceID, TodoID: todoID}
	return c.do(ctx, http.MethodDelete, "todo", nil, payload, nil)
}
