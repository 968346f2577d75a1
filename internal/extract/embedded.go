package extract

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"gcpt/internal/logger"
	"gcpt/internal/models"
)

// ErrNoEmbeddedData indicates the page carried no recognizable data blob.
var ErrNoEmbeddedData = errors.New("no embedded data blob found in page")

// blobMarkers locate the assignments and keys the tracker page has been
// seen embedding its dataset behind. Ordered from most to least specific.
// Each marker ends right before the payload's opening bracket; the payload
// itself is cut out by bracket depth, not by pattern, so nested arrays
// inside records never truncate it.
var blobMarkers = []*regexp.Regexp{
	regexp.MustCompile(`var\s+coalPlants\s*=\s*`),
	regexp.MustCompile(`window\.coalData\s*=\s*`),
	regexp.MustCompile(`"coal_plants"\s*:\s*`),
	regexp.MustCompile(`"plants"\s*:\s*`),
	regexp.MustCompile(`var\s+\w+\s*=\s*`),
}

// EmbeddedData fetches the tracker page and mines its script blocks for an
// embedded structured data blob.
type EmbeddedData struct {
	fetcher *Fetcher
	log     *logger.Logger
	pageURL string
}

// NewEmbeddedData creates the embedded-data strategy for one page URL.
func NewEmbeddedData(fetcher *Fetcher, log *logger.Logger, pageURL string) *EmbeddedData {
	return &EmbeddedData{
		fetcher: fetcher,
		log:     log.With("strategy", "embedded-data"),
		pageURL: pageURL,
	}
}

// Name returns the strategy identifier.
func (s *EmbeddedData) Name() string { return "embedded-data" }

// Extract fetches the page, collects script contents and scans them for a
// parseable plant-data blob. A missing marker or malformed content is a
// total failure for this strategy only.
func (s *EmbeddedData) Extract() Result {
	page, err := s.fetcher.Fetch(s.pageURL)
	if err != nil {
		return failed(err)
	}

	// Script blocks first; fall back to the whole page for blobs sitting
	// outside script tags (inline JSON data attributes and the like).
	haystacks := scriptContents(page)
	haystacks = append(haystacks, page)

	for _, haystack := range haystacks {
		records := scanForBlob(haystack)
		if len(records) > 0 {
			s.log.Info("found embedded data blob", "records", len(records))

			return Result{Records: records, Status: StatusSuccess}
		}
	}

	return failed(ErrNoEmbeddedData)
}

// scanForBlob runs the boundary markers over one haystack and returns the
// first balanced payload that decodes into plant records. Unbalanced
// payloads are skipped, never handed to the decoder as a fragment.
func scanForBlob(haystack string) []models.RawRecord {
	for _, marker := range blobMarkers {
		for _, loc := range marker.FindAllStringIndex(haystack, -1) {
			blob, ok := balancedBlob(haystack[loc[1]:])
			if !ok {
				continue
			}

			records, err := decodeBatch(blob)
			if err != nil {
				continue
			}

			return records
		}
	}

	return nil
}

// balancedBlob cuts the array or object starting at the head of s, tracking
// bracket depth and skipping over string literals. Returns false when s
// does not start with a bracket or the blob never closes.
func balancedBlob(s string) (string, bool) {
	if s == "" || (s[0] != '[' && s[0] != '{') {
		return "", false
	}

	open := s[0]

	closer := byte(']')
	if open == '{' {
		closer = '}'
	}

	depth := 0

	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// scriptContents extracts the text of every <script> element. A tokenizer
// is enough; the page is never rendered.
func scriptContents(page string) []string {
	var scripts []string

	tokenizer := html.NewTokenizer(strings.NewReader(page))
	inScript := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return scripts
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if inScript {
				scripts = append(scripts, string(tokenizer.Text()))
			}
		}
	}
}
