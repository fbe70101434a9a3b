package source

import "sync"

// funcSource pulls events from a callback as fast as the consumer
// reads them.
type funcSource[K comparable] struct {
	ch   chan Event[K]
	done chan struct{}
	once sync.Once
}

// Func returns a Source that draws events from fn until fn reports
// false, then ends. fn runs on the source's goroutine and must yield
// events in non-decreasing time order.
func Func[K comparable](fn func() (Event[K], bool)) Source[K] {
	s := &funcSource[K]{
		ch:   make(chan Event[K]),
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.ch)
		for {
			select {
			case <-s.done:
				return
			default:
			}
			ev, ok := fn()
			if !ok {
				return
			}
			select {
			case s.ch <- ev:
			case <-s.done:
				return
			}
		}
	}()

	return s
}

// Slice returns a Source that delivers the given events in order,
// without pacing, and then ends. The events must already be in
// non-decreasing time order.
func Slice[K comparable](events ...Event[K]) Source[K] {
	i := 0
	return Func(func() (Event[K], bool) {
		if i >= len(events) {
			return Event[K]{}, false
		}
		ev := events[i]
		i++
		return ev, true
	})
}

func (s *funcSource[K]) Events() <-chan Event[K] {
	return s.ch
}

func (s *funcSource[K]) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}
