package timeline

// deque is a double-ended queue built from two stacks. front holds the items
// before the first PushBack in reverse order, back holds the rest in order, so
// pushes at either end are amortized O(1) and indexing is O(1).
type deque[T any] struct {
	front []T
	back  []T
}

func (d *deque[T]) Len() int {
	return len(d.front) + len(d.back)
}

func (d *deque[T]) PushBack(v T) {
	d.back = append(d.back, v)
}

func (d *deque[T]) PushFront(v T) {
	d.front = append(d.front, v)
}

// At returns the i-th item counting from the front.
func (d *deque[T]) At(i int) T {
	if i < len(d.front) {
		return d.front[len(d.front)-1-i]
	}
	return d.back[i-len(d.front)]
}

func (d *deque[T]) Front() (T, bool) {
	var zero T
	switch {
	case len(d.front) > 0:
		return d.front[len(d.front)-1], true
	case len(d.back) > 0:
		return d.back[0], true
	default:
		return zero, false
	}
}

func (d *deque[T]) Back() (T, bool) {
	var zero T
	switch {
	case len(d.back) > 0:
		return d.back[len(d.back)-1], true
	case len(d.front) > 0:
		return d.front[0], true
	default:
		return zero, false
	}
}

// Each calls fn from front to back until fn returns false.
func (d *deque[T]) Each(fn func(T) bool) {
	for i := len(d.front) - 1; i >= 0; i-- {
		if !fn(d.front[i]) {
			return
		}
	}
	for _, v := range d.back {
		if !fn(v) {
			return
		}
	}
}

// EachReverse calls fn from back to front until fn returns false.
func (d *deque[T]) EachReverse(fn func(T) bool) {
	for i := len(d.back) - 1; i >= 0; i-- {
		if !fn(d.back[i]) {
			return
		}
	}
	for _, v := range d.front {
		if !fn(v) {
			return
		}
	}
}
