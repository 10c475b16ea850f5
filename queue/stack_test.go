package queue

import "testing"

func TestStackPushPop(t *testing.T) {
	testcases := []struct {
		inp []int
		exp []int
	}{
		{[]int{}, []int{}},
		{[]int{1}, []int{1}},
		{[]int{1, 2, 3}, []int{3, 2, 1}},
	}

	for i, tc := range testcases {
		s := NewStack()
		for _, v := range tc.inp {
			s.Push(v)
		}
		if s.Len() != len(tc.exp) {
			t.Errorf("Test %d: Expected length of %d. Got %d.", i, len(tc.exp), s.Len())
		}
		for j, want := range tc.exp {
			got := s.Pop()
			if got != want {
				t.Errorf("Test %d: pop %d: Expected %v. Got %v.", i, j, want, got)
			}
		}
		if !s.Empty() {
			t.Errorf("Test %d: Expected stack empty after draining.", i)
		}
	}
}

func TestStackPeek(t *testing.T) {
	s := NewStack()
	if s.Peek() != nil {
		t.Errorf("Expecting nil peek on empty stack.")
	}
	s.Push(1)
	s.Push(2)
	if s.Peek() != 2 {
		t.Errorf("Expecting peek to return 2 without removing it. Got %v.", s.Peek())
	}
	if s.Len() != 2 {
		t.Errorf("Peek should not change length. Got %d.", s.Len())
	}
}
