package resttree

import (
	"context"
	"errors"
)

// Model binds a remote resource endpoint to local layered state. Edits
// accumulate in the state's working layer until saved or rolled back,
// so a failed remote update can be reverted without refetching.
type Model struct {
	endpoint *Endpoint
	state    *State
}

// NewModel wraps an endpoint with state seeded from initial.
func NewModel(endpoint *Endpoint, initial map[string]interface{}) *Model {
	return &Model{
		endpoint: endpoint,
		state:    NewState(initial),
	}
}

// Endpoint returns the remote resource this model is bound to.
func (m *Model) Endpoint() *Endpoint {
	return m.endpoint
}

// State exposes the underlying layered state.
func (m *Model) State() *State {
	return m.state
}

// Get reads an attribute from the model state.
func (m *Model) Get(key string) (interface{}, bool) {
	return m.state.Get(key)
}

// Set stages a single attribute change.
func (m *Model) Set(key string, value interface{}) {
	m.state.Set(key, value)
}

// Update stages multiple attribute changes at once.
func (m *Model) Update(values map[string]interface{}) {
	m.state.Update(values)
}

// Save pushes the staged changes to the remote endpoint and, on
// success, commits them locally.
func (m *Model) Save(ctx context.Context) (*Response, error) {
	items := m.state.Items()

	resp, err := m.endpoint.Patch(ctx, WithJSONBody(items))
	if err != nil {
		return resp, err
	}

	if err := m.state.Save(); err != nil && !errors.Is(err, ErrNoStateToSave) {
		return resp, err
	}

	return resp, nil
}

// Rollback discards staged changes without touching the remote.
func (m *Model) Rollback() {
	m.state.Rollback()
}

// Fetch retrieves the resource from the remote endpoint and merges the
// response body into the model state as a saved layer.
func (m *Model) Fetch(ctx context.Context) (*Response, error) {
	resp, err := m.endpoint.Get(ctx)
	if err != nil {
		return resp, err
	}

	var values map[string]interface{}
	if err := resp.JSON(&values); err != nil {
		return resp, err
	}

	m.state.Update(values)

	if err := m.state.Save(); err != nil && !errors.Is(err, ErrNoStateToSave) {
		return resp, err
	}

	return resp, nil
}

// Equal reports whether two models reference the same endpoint and
// flatten to the same state.
func (m *Model) Equal(other *Model) bool {
	if other == nil {
		return false
	}

	return m.endpoint.Equal(other.endpoint) && m.state.Equal(other.state)
}
