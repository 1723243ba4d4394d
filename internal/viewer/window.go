package viewer

// VirtualItem is an ephemeral descriptor of one chunk's position and size for
// the current render pass. Offsets derive solely from the chunk index and the
// fixed chunk height, never from measured node sizes; that keeps items
// sequential, non-overlapping and gapless regardless of what the surface
// actually renders.
type VirtualItem struct {
	ChunkIndex int
	Chunk      Chunk
	TopOffset  int
	Height     int
	IsVisible  bool
}

// ComputeWindow returns the virtual items that must be materialized for the
// given current index: the visible chunk plus overscan chunks on each side,
// clamped to [0, total-1]. Indices outside the window are simply absent from
// the result; bounding the materialized node count is the point.
func ComputeWindow(current, total, overscan, chunkHeight int) []VirtualItem {
	if total <= 0 {
		return nil
	}
	if overscan < 0 {
		overscan = 0
	}
	if current < 0 {
		current = 0
	}
	if current > total-1 {
		current = total - 1
	}

	start := current - overscan
	if start < 0 {
		start = 0
	}
	end := current + overscan
	if end > total-1 {
		end = total - 1
	}

	items := make([]VirtualItem, 0, end-start+1)
	for i := start; i <= end; i++ {
		items = append(items, VirtualItem{
			ChunkIndex: i,
			TopOffset:  i * chunkHeight,
			Height:     chunkHeight,
			IsVisible:  true,
		})
	}
	return items
}

// TotalScrollHeight is the full scrollable extent for a document, published
// so the scroll container can size itself and keep scrollbar proportions
// accurate.
func TotalScrollHeight(total, chunkHeight int) int {
	if total < 0 {
		return 0
	}
	return total * chunkHeight
}
