package domain

import (
	"strings"
	"testing"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	first, size, err := Fingerprint(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	second, _, err := Fingerprint(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	if first != second {
		t.Errorf("hashes differ for identical content: %q vs %q", first, second)
	}
	if len(first) != HashLength {
		t.Errorf("hash length = %d, want %d", len(first), HashLength)
	}
	if size != int64(len("same content")) {
		t.Errorf("size = %d, want %d", size, len("same content"))
	}
}

func TestFingerprintDiffersByContent(t *testing.T) {
	a, _, err := Fingerprint(strings.NewReader("content a"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	b, _, err := Fingerprint(strings.NewReader("content b"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if a == b {
		t.Error("different content produced the same hash")
	}
}

func TestValidFingerprint(t *testing.T) {
	hash, _, err := Fingerprint(strings.NewReader("x"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	cases := []struct {
		in   string
		want bool
	}{
		{hash, true},
		{strings.ToUpper(hash), true},
		{"", false},
		{hash[:HashLength-1], false},
		{strings.Repeat("z", HashLength), false},
	}
	for _, tc := range cases {
		if got := ValidFingerprint(tc.in); got != tc.want {
			t.Errorf("ValidFingerprint(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
