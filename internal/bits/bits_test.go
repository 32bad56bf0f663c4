package bits

import "testing"

func TestSetGetClear(t *testing.T) {
	s := New(10)
	for i := 0; i < 10; i++ {
		if s.Get(i) {
			t.Fatalf("bit %d should start clear", i)
		}
	}

	s.Set(3)
	s.Set(9)
	if !s.Get(3) || !s.Get(9) {
		t.Fatal("expected bits 3 and 9 to be set")
	}
	for i := 0; i < 10; i++ {
		if i == 3 || i == 9 {
			continue
		}
		if s.Get(i) {
			t.Fatalf("bit %d should still be clear", i)
		}
	}

	s.Clear(3)
	if s.Get(3) {
		t.Fatal("bit 3 should be clear after Clear")
	}
	if !s.Get(9) {
		t.Fatal("bit 9 should be unaffected by clearing bit 3")
	}
}

func TestSetClearAll(t *testing.T) {
	s := New(128)
	for i := 0; i < 128; i += 3 {
		s.Set(i)
	}
	s.ClearAll()
	for i := 0; i < 128; i++ {
		if s.Get(i) {
			t.Fatalf("bit %d should be clear after ClearAll", i)
		}
	}
}

func TestSetResizePreservesBits(t *testing.T) {
	s := New(4)
	s.Set(1)
	s.Set(3)

	s.Resize(200)
	if s.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", s.Len())
	}
	if !s.Get(1) || !s.Get(3) {
		t.Fatal("resize should preserve existing bits")
	}
	for i := 4; i < 200; i++ {
		if s.Get(i) {
			t.Fatalf("new bit %d should start clear", i)
		}
	}

	// New bits past the old boundary are fully usable.
	s.Set(199)
	if !s.Get(199) {
		t.Fatal("expected bit 199 to be settable after resize")
	}
}

func TestSetResizeNoShrink(t *testing.T) {
	s := New(100)
	s.Set(90)
	s.Resize(10)
	if s.Len() != 100 {
		t.Fatalf("Resize should not shrink Len(), got %d", s.Len())
	}
	if !s.Get(90) {
		t.Fatal("Resize to a smaller n must not discard existing bits")
	}
}

func TestRoundWords(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{9, 16},
	}
	for _, c := range cases {
		if got := roundWords(c.in); got != c.want {
			t.Errorf("roundWords(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
