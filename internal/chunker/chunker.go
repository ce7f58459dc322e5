package chunker

import "strings"

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// boundary lookback covers the last 20% of a window
const lookbackRatio = 0.2

// Chunk splits text into overlapping segments of at most size characters,
// preferring sentence-terminal boundaries, then the nearest space, and only
// hard-cutting when a single token spans the whole lookback window. Whitespace
// runs are collapsed to single spaces before splitting. Empty input yields nil.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	clean := normalize(text)
	if clean == "" {
		return nil
	}
	if len(clean) <= size {
		return []string{clean}
	}

	var chunks []string
	start := 0
	for start < len(clean) {
		end := start + size
		if end >= len(clean) {
			end = len(clean)
		} else {
			end = adjustBoundary(clean, start, end, size)
		}

		chunk := strings.TrimSpace(clean[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Guard against a stalled cursor when overlap >= chunk advance.
		nextStart := end - overlap
		if nextStart > start {
			start = nextStart
		} else {
			start = end
		}
	}
	return chunks
}

// adjustBoundary pulls end back to a sentence terminal followed by a space
// within the last 20% of the window, else to the nearest preceding space.
func adjustBoundary(text string, start, end, size int) int {
	lookback := end - int(float64(size)*lookbackRatio)
	if lookback < start {
		lookback = start
	}

	for i := end - 1; i >= lookback; i-- {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && text[i+1] == ' ' {
			return i + 1
		}
	}

	if spaceAt := strings.LastIndexByte(text[:end], ' '); spaceAt > start {
		return spaceAt
	}

	// single very long token, forced hard cut
	return end
}

func normalize(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
