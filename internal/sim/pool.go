package sim

import (
	"sync"

	"github.com/san-kum/liquidsim/internal/particle"
)

// PositionPool recycles position slices handed to renderers each frame.
type PositionPool struct {
	pool sync.Pool
}

func NewPositionPool() *PositionPool {
	return &PositionPool{
		pool: sync.Pool{
			New: func() any {
				s := make([]particle.Vec, 0, 1024)
				return &s
			},
		},
	}
}

// Get returns an empty slice with room for at least n positions.
func (p *PositionPool) Get(n int) []particle.Vec {
	s := *p.pool.Get().(*[]particle.Vec)
	if cap(s) < n {
		return make([]particle.Vec, 0, n)
	}
	return s[:0]
}

func (p *PositionPool) Put(s []particle.Vec) {
	s = s[:0]
	p.pool.Put(&s)
}

// GetAndCopy returns a pooled copy of src.
func (p *PositionPool) GetAndCopy(src []particle.Vec) []particle.Vec {
	return append(p.Get(len(src)), src...)
}
