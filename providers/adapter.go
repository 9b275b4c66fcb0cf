package providers

import (
	"context"

	"github.com/nexsys-it/protego-backend/api/models"
)

// Adapter is one insurer integration: it translates the canonical request
// into the insurer's wire format, calls its quote endpoint and normalizes
// the answer into canonical plan cards. GetQuotes never returns an error;
// every failure mode is folded into the QuoteResult so one insurer can
// never take down its siblings.
type Adapter interface {
	Key() string
	GetQuotes(ctx context.Context, req *models.TravelInsuranceRequest) models.QuoteResult
}

// Registry resolves adapters by their exact configured key. Iteration
// follows registration order so the fan-out is deterministic to set up,
// even though results stream back in completion order.
type Registry struct {
	keys     []string
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	if _, ok := r.adapters[a.Key()]; !ok {
		r.keys = append(r.keys, a.Key())
	}
	r.adapters[a.Key()] = a
}

func (r *Registry) Get(key string) (Adapter, bool) {
	a, ok := r.adapters[key]
	return a, ok
}

func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.adapters[k])
	}
	return out
}
