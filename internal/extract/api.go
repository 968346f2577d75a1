package extract

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gcpt/internal/logger"
	"gcpt/internal/models"
)

// ErrNoEndpointFound indicates no candidate endpoint returned plant data.
var ErrNoEndpointFound = errors.New("no candidate endpoint returned plant data")

// APIProbe tries a small set of candidate API endpoints and paginates the
// first one that answers with a parseable batch of plant records.
type APIProbe struct {
	fetcher   *Fetcher
	log       *logger.Logger
	baseURL   string
	endpoints []string
	maxPages  int
	pageDelay time.Duration
}

// NewAPIProbe creates the API-probe strategy. Endpoints are paths joined
// onto baseURL, or absolute URLs.
func NewAPIProbe(fetcher *Fetcher, log *logger.Logger, baseURL string, endpoints []string, maxPages int, pageDelay time.Duration) *APIProbe {
	return &APIProbe{
		fetcher:   fetcher,
		log:       log.With("strategy", "api-probe"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		maxPages:  maxPages,
		pageDelay: pageDelay,
	}
}

// Name returns the strategy identifier.
func (s *APIProbe) Name() string { return "api-probe" }

// Extract probes each candidate endpoint and paginates the first hit.
// A failed page ends pagination but keeps prior pages; only a complete
// miss across all candidates is a strategy failure.
func (s *APIProbe) Extract() Result {
	for _, endpoint := range s.endpoints {
		url := s.resolve(endpoint)

		body, err := s.fetcher.Fetch(url)
		if err != nil {
			s.log.Debug("endpoint probe failed", "url", url, "error", err)

			continue
		}

		records, err := decodeBatch(body)
		if err != nil {
			s.log.Debug("endpoint returned no usable batch", "url", url, "error", err)

			continue
		}

		s.log.Info("found API endpoint", "url", url, "records", len(records))

		return s.paginate(url, records)
	}

	return failed(ErrNoEndpointFound)
}

// paginate requests subsequent pages until a page yields zero new records,
// a page fails, or the page ceiling is reached.
func (s *APIProbe) paginate(url string, firstPage []models.RawRecord) Result {
	all := firstPage
	seen := seenSet(firstPage)
	status := StatusSuccess

	for page := 2; page <= s.maxPages; page++ {
		time.Sleep(s.pageDelay)

		body, err := s.fetcher.Fetch(pageURL(url, page))
		if err != nil {
			// End of pagination, not total failure; prior pages are kept.
			s.log.Warn("page fetch failed, stopping pagination", "page", page, "error", err)

			status = StatusPartial

			break
		}

		records, err := decodeBatch(body)
		if err != nil {
			s.log.Debug("page returned no batch, stopping pagination", "page", page)

			break
		}

		fresh := 0

		for _, rec := range records {
			key := identityKey(rec)
			if seen[key] {
				continue
			}

			seen[key] = true
			all = append(all, rec)
			fresh++
		}

		if fresh == 0 {
			break
		}

		s.log.Info("retrieved page", "page", page, "total_records", len(all))
	}

	return Result{Records: all, Status: status}
}

func (s *APIProbe) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}

	return s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func pageURL(url string, page int) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}

	return url + sep + "page=" + strconv.Itoa(page)
}

func identityKey(rec models.RawRecord) string {
	plant, unit, country := identity(rec)

	return plant + "|" + unit + "|" + country
}

func seenSet(records []models.RawRecord) map[string]bool {
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		seen[identityKey(rec)] = true
	}

	return seen
}
