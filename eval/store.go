// Package eval holds current signal values and evaluates expressions
// against them.
package eval

import (
	"fmt"
	"sync"

	"github.com/silica-hdl/silica/hdl"
)

// A CommitObserver is notified after a signal takes a new value. Writing a
// signal's current value back does not notify.
type CommitObserver func(sig *hdl.Signal, val uint64)

// A Store keeps the current value of every signal it has seen. Reads of a
// signal that was never assigned return the signal's initial value.
type Store struct {
	mu        sync.RWMutex
	values    map[*hdl.Signal]uint64
	observers []CommitObserver
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		values: make(map[*hdl.Signal]uint64),
	}
}

// OnCommit registers an observer for signal value changes.
func (s *Store) OnCommit(o CommitObserver) {
	s.observers = append(s.observers, o)
}

// SignalValue returns the current value of a signal.
func (s *Store) SignalValue(sig *hdl.Signal) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(sig)
}

func (s *Store) read(sig *hdl.Signal) uint64 {
	if v, ok := s.values[sig]; ok {
		return v
	}
	return sig.Init()
}

// Value evaluates expr against the current signal values. Evaluation is
// deterministic and never suspends.
func (s *Store) Value(expr hdl.Expr) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value(expr)
}

func (s *Store) value(expr hdl.Expr) (uint64, error) {
	switch e := expr.(type) {
	case hdl.Const:
		return e.Value, nil

	case hdl.Ref:
		if e.Signal == nil {
			return 0, fmt.Errorf("reference to a nil signal")
		}
		return s.read(e.Signal), nil

	case hdl.Unary:
		x, err := s.value(e.X)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case hdl.OpNot:
			return ^x, nil
		case hdl.OpNeg:
			return -x, nil
		default:
			return 0, fmt.Errorf("unknown unary operation %d", e.Op)
		}

	case hdl.Binary:
		x, err := s.value(e.X)
		if err != nil {
			return 0, err
		}
		y, err := s.value(e.Y)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case hdl.OpAdd:
			return x + y, nil
		case hdl.OpSub:
			return x - y, nil
		case hdl.OpAnd:
			return x & y, nil
		case hdl.OpOr:
			return x | y, nil
		case hdl.OpXor:
			return x ^ y, nil
		case hdl.OpEq:
			if x == y {
				return 1, nil
			}
			return 0, nil
		default:
			return 0, fmt.Errorf("unknown binary operation %d", e.Op)
		}

	case nil:
		return 0, fmt.Errorf("cannot evaluate a nil expression")

	default:
		return 0, fmt.Errorf("cannot evaluate expression of type %T", expr)
	}
}

// Assign commits value to the signal lhs references, masked to the signal's
// width. Observers run only when the stored value actually changes.
func (s *Store) Assign(lhs hdl.Expr, value uint64) error {
	ref, ok := lhs.(hdl.Ref)
	if !ok {
		return fmt.Errorf(
			"assignment target of type %T is not a signal reference", lhs)
	}
	if ref.Signal == nil {
		return fmt.Errorf("assignment to a nil signal")
	}

	sig := ref.Signal
	v := value & sig.Mask()

	s.mu.Lock()
	old := s.read(sig)
	if old == v {
		s.mu.Unlock()
		return nil
	}
	s.values[sig] = v
	s.mu.Unlock()

	for _, o := range s.observers {
		o(sig, v)
	}

	return nil
}
