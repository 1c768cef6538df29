package descriptor

import "testing"

func TestTruncateKeepLastKeepsTail(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}
	got := truncateKeepLast(all, 3)
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTruncateKeepLastNoTruncationWhenUnderCapacity(t *testing.T) {
	all := []int{1, 2}
	got := truncateKeepLast(all, 5)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestTruncateKeepLastZeroCapacity(t *testing.T) {
	all := []int{1, 2, 3}
	got := truncateKeepLast(all, 0)
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
