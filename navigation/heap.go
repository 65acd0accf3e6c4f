package navigation

// --- Min-heap with lazy invalidation ---
// Entries are never updated in place: an improved node is pushed again and stale copies are
// dropped on pop by comparing dist against the authoritative record

type heapEntry struct {
	node     int // Cell index (grid search) or candidate index (simplifier)
	dist     int // Distance-so-far at push time
	priority int // dist + heuristic
	tie      int // Secondary order among equal priorities
}

func (e heapEntry) less(o heapEntry) bool {
	if e.priority != o.priority {
		return e.priority < o.priority
	}
	return e.tie < o.tie
}

type minHeap []heapEntry

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left]) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

func (h *minHeap) reset() { *h = (*h)[:0] }
