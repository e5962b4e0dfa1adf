package model

import "testing"

func TestParseBeat(t *testing.T) {
	tests := []struct {
		in      string
		num     int64
		den     int64
		wantErr bool
	}{
		{"3", 3, 1, false},
		{"1/2", 1, 2, false},
		{"3/4", 3, 4, false},
		{"2/4", 1, 2, false}, // normalized
		{" 1 / 2 ", 1, 2, false},
		{"0", 0, 1, false},
		{"", 0, 0, true},
		{"abc", 0, 0, true},
		{"1/0", 0, 0, true},
		{"1/-2", 0, 0, true},
	}

	for _, tt := range tests {
		b, err := ParseBeat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBeat(%q): expected error, got %v", tt.in, b)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBeat(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if b.Num != tt.num || b.Den != tt.den {
			t.Errorf("ParseBeat(%q) = %d/%d, expected %d/%d", tt.in, b.Num, b.Den, tt.num, tt.den)
		}
	}
}

func TestBeat_Arithmetic(t *testing.T) {
	half := NewBeat(1, 2)
	quarter := NewBeat(1, 4)

	sum := half.Add(quarter)
	if !sum.Equal(NewBeat(3, 4)) {
		t.Errorf("1/2 + 1/4 = %s, expected 3/4", sum)
	}

	diff := half.Sub(quarter)
	if !diff.Equal(quarter) {
		t.Errorf("1/2 - 1/4 = %s, expected 1/4", diff)
	}

	// Exact comparison where floats would drift: 1/3 * 3 == 1.
	third := NewBeat(1, 3)
	whole := third.Add(third).Add(third)
	if !whole.Equal(NewBeat(1, 1)) {
		t.Errorf("1/3 + 1/3 + 1/3 = %s, expected 1", whole)
	}
}

func TestBeat_Cmp(t *testing.T) {
	tests := []struct {
		a, b Beat
		want int
	}{
		{NewBeat(1, 2), NewBeat(1, 2), 0},
		{NewBeat(1, 2), NewBeat(2, 4), 0},
		{NewBeat(1, 3), NewBeat(1, 2), -1},
		{NewBeat(3, 4), NewBeat(1, 2), 1},
	}
	for _, tt := range tests {
		if got := tt.a.Cmp(tt.b); got != tt.want {
			t.Errorf("(%s).Cmp(%s) = %d, expected %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBeat_String(t *testing.T) {
	if s := NewBeat(3, 1).String(); s != "3" {
		t.Errorf("Expected \"3\", got %q", s)
	}
	if s := NewBeat(1, 2).String(); s != "1/2" {
		t.Errorf("Expected \"1/2\", got %q", s)
	}
	if s := NewBeat(4, 8).String(); s != "1/2" {
		t.Errorf("Expected normalized \"1/2\", got %q", s)
	}
}
