package resttree

import (
	"context"
	"fmt"
)

// Manager holds a local collection of models backed by one collection
// endpoint. Lookups prefer the collection; a miss falls through to the
// remote resource, and the fetched model joins the collection.
//
// The manager performs no locking; concurrent use must be serialized
// by the caller.
type Manager struct {
	endpoint *Endpoint
	keyField string
	models   map[string]*Model
}

// NewManager builds a manager over endpoint. keyField names the state
// entry used to index models, typically "id". Seed models without that
// entry are held back until they gain one through Add.
func NewManager(endpoint *Endpoint, keyField string, models ...*Model) *Manager {
	manager := &Manager{
		endpoint: endpoint,
		keyField: keyField,
		models:   make(map[string]*Model, len(models)),
	}

	for _, model := range models {
		manager.Add(model)
	}

	return manager
}

// Endpoint returns the collection endpoint the manager is bound to.
func (m *Manager) Endpoint() *Endpoint {
	return m.endpoint
}

// Len returns the number of models held locally.
func (m *Manager) Len() int {
	return len(m.models)
}

// Add indexes a model into the local collection by its key field. A
// model without the key field is ignored.
func (m *Manager) Add(model *Model) {
	if model == nil {
		return
	}

	if key, ok := m.keyOf(model); ok {
		m.models[key] = model
	}
}

// Create posts the model's flattened state to the collection endpoint
// and, on success, adds the model to the local collection.
func (m *Manager) Create(ctx context.Context, model *Model) (*Response, error) {
	resp, err := m.endpoint.Post(ctx, WithJSONBody(model.State().Items()))
	if err != nil {
		return resp, err
	}

	m.Add(model)

	return resp, nil
}

// Get returns the model for ref. A local hit is returned as-is; a miss
// fetches the resource from the child endpoint for ref and caches the
// resulting model.
func (m *Manager) Get(ctx context.Context, ref interface{}) (*Model, error) {
	key := fmt.Sprintf("%v", ref)
	if model, ok := m.models[key]; ok {
		return model, nil
	}

	child, err := m.endpoint.ChildRef(ref)
	if err != nil {
		return nil, err
	}

	model := NewModel(child, nil)
	if _, err := model.Fetch(ctx); err != nil {
		return nil, err
	}

	m.Add(model)

	return model, nil
}

// Discard drops the model from the local collection. The remote
// resource is untouched; discarding an unheld model is a no-op.
func (m *Manager) Discard(model *Model) {
	if model == nil {
		return
	}

	key, ok := m.keyOf(model)
	if !ok {
		return
	}

	if held, exists := m.models[key]; exists && held == model {
		delete(m.models, key)
	}
}

func (m *Manager) keyOf(model *Model) (string, bool) {
	value, ok := model.Get(m.keyField)
	if !ok {
		return "", false
	}

	return fmt.Sprintf("%v", value), true
}
