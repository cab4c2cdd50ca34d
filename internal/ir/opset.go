package ir

// OpSet is an order-preserving set of operations: membership is by handle
// identity, iteration follows insertion order. The graph-ordering utilities
// take and return OpSets so that "reorder this set" is expressible without
// losing membership.
type OpSet struct {
	order []Operation
	index map[Operation]int
}

// NewOpSet builds a set from ops, keeping the first occurrence of each.
func NewOpSet(ops ...Operation) *OpSet {
	s := &OpSet{index: make(map[Operation]int, len(ops))}
	for _, op := range ops {
		s.Insert(op)
	}
	return s
}

// Insert appends op unless it is already present. Reports whether the set
// grew.
func (s *OpSet) Insert(op Operation) bool {
	if _, ok := s.index[op]; ok {
		return false
	}
	s.index[op] = len(s.order)
	s.order = append(s.order, op)
	return true
}

func (s *OpSet) Contains(op Operation) bool {
	_, ok := s.index[op]
	return ok
}

func (s *OpSet) Len() int { return len(s.order) }

// Ops returns the operations in insertion order. The slice aliases the
// set's storage; callers must not modify it.
func (s *OpSet) Ops() []Operation { return s.order }

// Equal reports whether both sets have the same membership, ignoring order.
func (s *OpSet) Equal(other *OpSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for op := range s.index {
		if !other.Contains(op) {
			return false
		}
	}
	return true
}
