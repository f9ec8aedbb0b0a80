package dynamo

import "sync"

// StatePool hands out zeroed state buffers of the model dimension so
// concurrent trials reuse memory across propagations.
type StatePool struct {
	dim  int
	pool sync.Pool
}

func NewStatePool(dim int) *StatePool {
	p := &StatePool{dim: dim}
	p.pool.New = func() any {
		s := make(State, dim)
		return &s
	}
	return p
}

func (p *StatePool) Dim() int { return p.dim }

func (p *StatePool) Get() State {
	return *p.pool.Get().(*State)
}

// Put clears s and keeps it for reuse. Buffers of another length are dropped.
func (p *StatePool) Put(s State) {
	if len(s) != p.dim {
		return
	}
	clear(s)
	p.pool.Put(&s)
}

// Copy returns a pooled buffer holding src.
func (p *StatePool) Copy(src State) State {
	dst := p.Get()
	copy(dst, src)
	return dst
}
