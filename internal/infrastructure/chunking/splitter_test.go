package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextYieldsOneChunk(t *testing.T) {
	s := NewSplitter(100, 20)

	chunks := s.Split("short text")
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("chunks = %v, want the whole text as one chunk", chunks)
	}
}

func TestSplitEmptyTextYieldsNothing(t *testing.T) {
	s := NewSplitter(100, 20)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("chunks = %v, want nil", chunks)
	}
}

func TestSplitCoversWholeTextWithOverlap(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("abcdefghij", 20)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want the text split into windows", len(chunks))
	}
	if !strings.HasPrefix(text, chunks[0]) {
		t.Error("first chunk should start the text")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk should end the text")
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > 50 {
			t.Errorf("chunk %d has %d runes, want <= 50", i, len([]rune(chunk)))
		}
	}
}

func TestSplitPrefersLineBreaks(t *testing.T) {
	s := NewSplitter(60, 0)
	line := strings.Repeat("x", 45)
	text := line + "\n" + line + "\n" + line

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want multiple", len(chunks))
	}
	if chunks[0] != line {
		t.Errorf("first chunk = %q, want a cut on the line break", chunks[0])
	}
}

func TestNewSplitterNormalizesBadParameters(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize <= 0 || s.Overlap < 0 {
		t.Fatalf("splitter = %+v, want sane defaults", s)
	}

	s = NewSplitter(100, 100)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d must be below chunk size %d", s.Overlap, s.ChunkSize)
	}
}
