package scene

// Cancel disconnects a listener.
type Cancel func()

type slot[F any] struct {
	fn        F
	cancelled bool
}

// Signal keeps an ordered list of listeners. Listeners connected while the
// signal is being emitted are only invoked on the next emission; listeners
// cancelled while the signal is being emitted are skipped immediately.
type Signal[F any] struct {
	slots []*slot[F]
}

// Connect appends a listener.
func (s *Signal[F]) Connect(fn F) Cancel {
	sl := &slot[F]{fn: fn}
	s.slots = append(s.slots, sl)

	return func() {
		if sl.cancelled {
			return
		}
		sl.cancelled = true
		for i, other := range s.slots {
			if other == sl {
				s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
				return
			}
		}
	}
}

// Emit passes each connected listener to invoke.
func (s *Signal[F]) Emit(invoke func(F)) {
	if len(s.slots) == 0 {
		return
	}
	snapshot := append([]*slot[F](nil), s.slots...)
	for _, sl := range snapshot {
		if !sl.cancelled {
			invoke(sl.fn)
		}
	}
}

// Len returns the number of connected listeners.
func (s *Signal[F]) Len() int {
	return len(s.slots)
}
