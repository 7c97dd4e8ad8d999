package compression

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    Algorithm
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Snappy", Snappy, false},
		{"zstd", None, true},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", tt.name, got, err)
		}
	}
}

func TestGetCompressor(t *testing.T) {
	for _, algo := range []Algorithm{None, Snappy} {
		c, err := GetCompressor(algo)
		if err != nil {
			t.Fatalf("GetCompressor(%v) error = %v", algo, err)
		}
		if c.Algorithm() != algo {
			t.Errorf("Algorithm() = %v, want %v", c.Algorithm(), algo)
		}
	}
	if _, err := GetCompressor(Algorithm(99)); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestSnappyCompressor(t *testing.T) {
	c := NewSnappyCompressor()
	original := []byte(strings.Repeat(`{"status":"success","response":"OK"}`, 50))

	compressed, err := c.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("expected repetitive input to shrink: %d >= %d", len(compressed), len(original))
	}

	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("Decompressed data does not match original")
	}

	if _, err := c.Decompress([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for corrupt input")
	}
}

func TestFrameRoundTripAcrossSettings(t *testing.T) {
	payload := []byte(`{"id":"1","command":"get foo"}`)

	for _, algo := range []Algorithm{None, Snappy} {
		c, _ := GetCompressor(algo)
		frame, err := Frame(c, payload)
		if err != nil {
			t.Fatalf("Frame(%v) error = %v", algo, err)
		}
		if Algorithm(frame[0]) != algo {
			t.Errorf("frame header = %d, want %d", frame[0], algo)
		}
		// any reader decodes any frame regardless of its own setting
		got, err := Unframe(frame)
		if err != nil {
			t.Fatalf("Unframe(%v) error = %v", algo, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Unframe(%v) = %q", algo, got)
		}
	}
}

func TestUnframeErrors(t *testing.T) {
	if _, err := Unframe(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Unframe(nil) error = %v", err)
	}
	if _, err := Unframe([]byte{42, 1, 2}); err == nil {
		t.Error("expected error for unknown algorithm byte")
	}
}
