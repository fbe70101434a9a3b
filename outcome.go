package typematic

// Outcome is the contract for handler results aggregated by Tick. The
// zero value of an implementation is the neutral element and Merge
// must be associative; Tick folds every handler return value into a
// running total and reports the total to the caller.
type Outcome[R any] interface {
	Merge(other R) R
}

// Changed is the smallest useful Outcome: a flag reporting whether any
// handler invocation signaled a change. Merge is logical OR.
type Changed bool

// Merge returns the logical OR of c and other.
func (c Changed) Merge(other Changed) Changed {
	return c || other
}

// Count is an Outcome that totals across handler invocations. Merge is
// addition. Returning Count(1) from a handler makes Tick report the
// number of events delivered.
type Count int

// Merge returns the sum of c and other.
func (c Count) Merge(other Count) Count {
	return c + other
}
