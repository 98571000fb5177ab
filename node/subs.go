package node

// subscribers is an ordered listener registry. Add returns a disposer
// that is safe to call more than once. Listeners run in registration
// order.
type subscribers[T any] struct {
	nextID  int
	entries []subEntry[T]
}

type subEntry[T any] struct {
	id int
	fn T
}

func (s *subscribers[T]) add(fn T) func() {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, subEntry[T]{id: id, fn: fn})
	return func() {
		for i := range s.entries {
			if s.entries[i].id != id {
				continue
			}
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *subscribers[T]) len() int {
	return len(s.entries)
}

// each iterates over a copy so listeners may dispose themselves or
// register others mid-notification.
func (s *subscribers[T]) each(f func(fn T)) {
	snapshot := make([]subEntry[T], len(s.entries))
	copy(snapshot, s.entries)
	for i := range snapshot {
		f(snapshot[i].fn)
	}
}

func (s *subscribers[T]) clear() {
	s.entries = nil
}
