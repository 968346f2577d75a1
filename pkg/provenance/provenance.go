// Package provenance stamps generated reports with a verifiable origin
// block: generation time, record count and a content hash.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart opens the provenance block.
	TagStart = "--- PROVENANCE_START"
	// TagEnd closes the provenance block.
	TagEnd = "PROVENANCE_END ---"
)

// Provenance verification errors.
var (
	ErrNoProvenanceBlock = errors.New("no provenance block found")
	ErrNoHashFound       = errors.New("no hash found in provenance block")
	ErrHashMismatch      = errors.New("hash mismatch")
)

// Provenance carries the report's origin information.
type Provenance struct {
	GeneratedAt time.Time
	Records     int
	Hash        string
}

// blockRegex matches the entire provenance block including tags.
var blockRegex = regexp.MustCompile(`(?s)---\s*PROVENANCE_START\s*\n(.*?)\n\s*PROVENANCE_END\s*---`)

// Extract removes the provenance block from content and returns both the
// parsed block and the cleaned content. The cleaned content is what gets
// hashed.
func Extract(content string) (*Provenance, string) {
	match := blockRegex.FindStringSubmatch(content)
	clean := strings.TrimRight(blockRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, clean
	}

	p := &Provenance{}

	for _, line := range strings.Split(match[1], "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "GENERATED":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				p.GeneratedAt = t
			}
		case "RECORDS":
			if n, err := strconv.Atoi(val); err == nil {
				p.Records = n
			}
		case "HASH":
			p.Hash = val
		}
	}

	return p, clean
}

// CalculateHash computes the SHA-256 hash of the content, excluding any
// provenance block.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Stamp appends or replaces the provenance block with a fresh hash and
// timestamp.
func Stamp(content string, records int) string {
	_, clean := Extract(content)

	block := fmt.Sprintf("\n\n%s\nGENERATED: %s\nRECORDS: %d\nHASH: %s\n%s",
		TagStart,
		time.Now().UTC().Format(time.RFC3339),
		records,
		CalculateHash(clean),
		TagEnd)

	return clean + block
}

// Verify checks the content against the hash in its provenance block.
func Verify(content string) (bool, error) {
	p, clean := Extract(content)
	if p == nil {
		return false, ErrNoProvenanceBlock
	}

	if p.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != p.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, p.Hash, calculated)
	}

	return true, nil
}
