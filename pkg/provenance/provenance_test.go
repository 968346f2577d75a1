package provenance

import (
	"errors"
	"strings"
	"testing"
)

const report = "Coal Plant Dataset Summary\n==========================\nTotal records: 42\n"

func TestStamp_AddsBlock(t *testing.T) {
	stamped := Stamp(report, 42)

	if !strings.Contains(stamped, TagStart) || !strings.Contains(stamped, TagEnd) {
		t.Fatal("stamped content missing provenance tags")
	}

	if !strings.Contains(stamped, "RECORDS: 42") {
		t.Error("stamped content missing record count")
	}
}

func TestStamp_Verifies(t *testing.T) {
	stamped := Stamp(report, 42)

	ok, err := Verify(stamped)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if !ok {
		t.Error("Verify = false for freshly stamped content")
	}
}

func TestStamp_ReplacesExistingBlock(t *testing.T) {
	stamped := Stamp(Stamp(report, 10), 42)

	if strings.Count(stamped, TagStart) != 1 {
		t.Fatal("restamping must replace the existing block, not append another")
	}

	p, _ := Extract(stamped)
	if p == nil || p.Records != 42 {
		t.Errorf("Records = %v, want 42", p)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	stamped := Stamp(report, 42)
	tampered := strings.Replace(stamped, "Total records: 42", "Total records: 999", 1)

	ok, err := Verify(tampered)
	if ok {
		t.Fatal("Verify = true for tampered content")
	}

	if !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify error = %v, want ErrHashMismatch", err)
	}
}

func TestVerify_NoBlock(t *testing.T) {
	_, err := Verify(report)
	if !errors.Is(err, ErrNoProvenanceBlock) {
		t.Errorf("Verify error = %v, want ErrNoProvenanceBlock", err)
	}
}

func TestVerify_NoHash(t *testing.T) {
	content := report + "\n\n" + TagStart + "\nGENERATED: 2024-01-01T00:00:00Z\nRECORDS: 42\n" + TagEnd

	_, err := Verify(content)
	if !errors.Is(err, ErrNoHashFound) {
		t.Errorf("Verify error = %v, want ErrNoHashFound", err)
	}
}

func TestExtract_ParsesFields(t *testing.T) {
	stamped := Stamp(report, 7)

	p, clean := Extract(stamped)
	if p == nil {
		t.Fatal("Extract returned nil provenance")
	}

	if p.Records != 7 {
		t.Errorf("Records = %d, want 7", p.Records)
	}

	if p.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not parsed")
	}

	if p.Hash == "" {
		t.Error("Hash not parsed")
	}

	if strings.Contains(clean, TagStart) {
		t.Error("cleaned content still contains the block")
	}
}

func TestCalculateHash_IgnoresProvenanceBlock(t *testing.T) {
	if CalculateHash(report) != CalculateHash(Stamp(report, 42)) {
		t.Error("hash must be computed over the content without its block")
	}
}
