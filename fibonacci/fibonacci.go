// Package fibonacci keeps a growing prefix of the Fibonacci sequence.
package fibonacci

import "errors"

// MaxLen caps the sequence at F(0)..F(90).
const MaxLen = 91

var ErrTooLong = errors.New("fibonacci: sequence longer than MaxLen")

// Sequence holds the first Len() Fibonacci numbers, starting 0, 1.
type Sequence struct {
	values []uint64
}

// Add appends the next number.
func (s *Sequence) Add() error {
	switch n := len(s.values); {
	case n >= MaxLen:
		return ErrTooLong
	case n < 2:
		s.values = append(s.values, uint64(n))
	default:
		s.values = append(s.values, s.values[n-2]+s.values[n-1])
	}
	return nil
}

// Subtract drops the last number. An empty sequence stays empty.
func (s *Sequence) Subtract() {
	if len(s.values) > 0 {
		s.values = s.values[:len(s.values)-1]
	}
}

// AddN appends n numbers, stopping at MaxLen.
func (s *Sequence) AddN(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Add(); err != nil {
			return err
		}
	}
	return nil
}

// SubtractN drops the last n numbers. Asking for more than Len() is a no-op.
func (s *Sequence) SubtractN(n int) {
	if n < 0 || n > len(s.values) {
		return
	}
	s.values = s.values[:len(s.values)-n]
}

func (s *Sequence) Len() int {
	return len(s.values)
}

// Values returns a copy of the numbers.
func (s *Sequence) Values() []uint64 {
	return append([]uint64{}, s.values...)
}

// First returns the first n numbers.
func First(n int) ([]uint64, error) {
	var s Sequence
	if err := s.AddN(n); err != nil {
		return nil, err
	}
	return s.Values(), nil
}
