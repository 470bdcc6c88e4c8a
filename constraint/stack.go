package constraint

import "github.com/bent101/wordle-search/hint"

// Stack holds the committed state at the bottom and one speculative state
// per level of search recursion above it.
type Stack struct {
	levels []State
}

func NewStack() *Stack {
	return &Stack{levels: []State{New()}}
}

func (s *Stack) Top() State {
	return s.levels[len(s.levels)-1]
}

// Depth is the number of speculative levels.
func (s *Stack) Depth() int {
	return len(s.levels) - 1
}

// Push derives a speculative state that Pop undoes.
func (s *Stack) Push(guess hint.Word, digits hint.Digits) State {
	next := s.Top().Derive(guess, digits)
	s.levels = append(s.levels, next)
	return next
}

func (s *Stack) Pop() {
	if len(s.levels) == 1 {
		panic("constraint: pop of committed state")
	}
	s.levels = s.levels[:len(s.levels)-1]
}

// Commit derives a permanent state and drops every speculative level.
func (s *Stack) Commit(guess hint.Word, digits hint.Digits) State {
	next := s.Top().Derive(guess, digits)
	s.levels = append(s.levels[:0], next)
	return next
}

func (s *Stack) Reset() {
	s.levels = append(s.levels[:0], New())
}
