package viewer

import "testing"

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		total       int
		overscan    int
		wantIndices []int
	}{
		{
			name:        "mid document",
			current:     250,
			total:       500,
			overscan:    2,
			wantIndices: []int{248, 249, 250, 251, 252},
		},
		{
			name:        "clamped at start",
			current:     0,
			total:       500,
			overscan:    2,
			wantIndices: []int{0, 1, 2},
		},
		{
			name:        "clamped at end",
			current:     499,
			total:       500,
			overscan:    2,
			wantIndices: []int{497, 498, 499},
		},
		{
			name:        "document smaller than window",
			current:     1,
			total:       3,
			overscan:    5,
			wantIndices: []int{0, 1, 2},
		},
		{
			name:        "current beyond bounds clamps",
			current:     900,
			total:       10,
			overscan:    1,
			wantIndices: []int{8, 9},
		},
		{
			name:        "negative current clamps",
			current:     -4,
			total:       10,
			overscan:    1,
			wantIndices: []int{0, 1},
		},
		{
			name:        "empty document",
			current:     0,
			total:       0,
			overscan:    2,
			wantIndices: nil,
		},
		{
			name:        "zero overscan",
			current:     5,
			total:       10,
			overscan:    0,
			wantIndices: []int{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ComputeWindow(tt.current, tt.total, tt.overscan, 400)
			if len(items) != len(tt.wantIndices) {
				t.Fatalf("ComputeWindow() returned %d items, want %d", len(items), len(tt.wantIndices))
			}
			for i, item := range items {
				if item.ChunkIndex != tt.wantIndices[i] {
					t.Errorf("item %d has index %d, want %d", i, item.ChunkIndex, tt.wantIndices[i])
				}
				if item.TopOffset != item.ChunkIndex*400 {
					t.Errorf("item %d has offset %d, want %d", i, item.TopOffset, item.ChunkIndex*400)
				}
				if item.Height != 400 {
					t.Errorf("item %d has height %d, want 400", i, item.Height)
				}
			}
		})
	}
}

func TestComputeWindow_Deterministic(t *testing.T) {
	a := ComputeWindow(250, 500, 2, 400)
	b := ComputeWindow(250, 500, 2, 400)
	if len(a) != len(b) {
		t.Fatalf("window lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("item %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestComputeWindow_ItemsAreGapless(t *testing.T) {
	items := ComputeWindow(100, 500, 3, 250)
	for i := 1; i < len(items); i++ {
		prevBottom := items[i-1].TopOffset + items[i-1].Height
		if items[i].TopOffset != prevBottom {
			t.Errorf("gap between items %d and %d: %d != %d", i-1, i, items[i].TopOffset, prevBottom)
		}
	}
}

func TestTotalScrollHeight(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  int
	}{
		{name: "empty", total: 0, want: 0},
		{name: "negative", total: -1, want: 0},
		{name: "large document", total: 1000, want: 400000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalScrollHeight(tt.total, 400); got != tt.want {
				t.Errorf("TotalScrollHeight(%d, 400) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}
