package chunking

import "strings"

// Splitter cuts text into overlapping rune windows, snapping the cut to the
// nearest paragraph or line break inside the tail of the window when one is
// available.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snapToBreak(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = start + step
		}
		start = next
	}
	return out
}

// snapToBreak moves end back to just after the last newline in the final
// quarter of the window, so chunks prefer ending on a paragraph or line
// boundary. Without a break in range the hard cut stands.
func snapToBreak(runes []rune, start, end int) int {
	lowest := end - (end-start)/4
	for i := end - 1; i >= lowest; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	return end
}
