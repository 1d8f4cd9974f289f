package action

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// Echo writes its data back as JSON.
type Echo struct {
	data map[string]any
}

// NewEcho is the Constructor of the echo action.
func NewEcho(Deps) (Action, error) {
	return &Echo{data: map[string]any{}}, nil
}

func (e *Echo) SetData(data map[string]any) error {
	e.data = maps.Clone(data)
	if e.data == nil {
		e.data = map[string]any{}
	}
	return nil
}

func (e *Echo) HandleHTTP(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	body, err := json.Marshal(e.data)
	if err != nil {
		return fmt.Errorf("failed to encode echo data: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
