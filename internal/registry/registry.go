// Package registry implements the registry client (C3) and response adapter
// (C4): fetching raw tag pages from Docker Hub, MCR, and GCR, and
// normalizing them into sorted, deduplicated Tag lists.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/containerd/platforms"
	"github.com/rs/zerolog"

	"github.com/tagwright/dockertag/internal/image"
	"github.com/tagwright/dockertag/internal/tag"
)

// TagResultLimit is the default cap on how many Docker Hub tags are
// accumulated across pages, overridable 1-65535 via --tag-search-limit.
const TagResultLimit = 2000

// ErrImageNotFound is surfaced on network or HTTP failures fetching a
// repository's tag list.
var ErrImageNotFound = errors.New("could not find image in the registry")

// ErrInvalidDockerhubResponse is surfaced when the first page of a Docker
// Hub response fails to parse as JSON.
var ErrInvalidDockerhubResponse = errors.New("could not parse dockerhub response")

// ErrNotImplemented marks the reserved-but-unimplemented GCR request path.
var ErrNotImplemented = errors.New("registry not implemented")

// Client fetches and normalizes tag lists for an image. It is safe for
// concurrent use; construct with New.
type Client struct {
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

// New builds a Client with the standard 10-second global timeout and the
// given User-Agent, attached through an instrumentation RoundTripper.
func New(userAgent string, log zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &instrumentedTransport{base: http.DefaultTransport, userAgent: userAgent, log: log},
		},
		userAgent: userAgent,
		log:       log,
	}
}

// instrumentedTransport attaches a User-Agent header and logs each
// request/response pair. It never injects authentication, matching the
// Non-goals (no registry authentication).
type instrumentedTransport struct {
	base      http.RoundTripper
	userAgent string
	log       zerolog.Logger
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	t.log.Debug().Str("method", clone.Method).Str("url", clone.URL.String()).Msg("registry request")
	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		t.log.Debug().Err(err).Msg("registry request failed")
		return nil, err
	}
	t.log.Debug().Int("status", resp.StatusCode).Msg("registry response")
	return resp, nil
}

// dockerHubResult mirrors the fields consumed from a Docker Hub tag page.
type dockerHubResult struct {
	Name   string         `json:"name"`
	Images []dockerHubImg `json:"images"`
}

type dockerHubImg struct {
	Architecture string `json:"architecture"`
}

type dockerHubResponse struct {
	Count    *int              `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []dockerHubResult `json:"results"`
}

// mcrEntry mirrors the fields consumed from an MCR tag list entry.
type mcrEntry struct {
	Name         string  `json:"name"`
	Architecture *string `json:"architecture"`
}

// FetchDockerHub follows the `next` cursor until either the page has zero
// results, accumulated results reach limit (0 means TagResultLimit), or JSON
// parsing fails. A parse failure on the first page surfaces
// ErrInvalidDockerhubResponse; on a later page it simply stops and returns
// what was collected so far.
func (c *Client) FetchDockerHub(ctx context.Context, img image.Image, limit int) ([]dockerHubResult, error) {
	if limit <= 0 {
		limit = TagResultLimit
	}

	requestURL, err := img.GetQueryURL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
	}

	var collected []dockerHubResult
	for requestURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Error().Err(err).Str("image", img.GetFullName()).Msg("failed to send request to docker hub")
			return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			c.log.Error().Int("status", resp.StatusCode).Str("image", img.GetFullName()).Msg("docker hub returned an error status")
			return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
		}

		var parsed dockerHubResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if decodeErr != nil {
			c.log.Error().Err(decodeErr).Msg("failed to parse json response, exiting tag retrieval")
			if len(collected) == 0 {
				return nil, ErrInvalidDockerhubResponse
			}
			break
		}

		if len(parsed.Results) == 0 {
			c.log.Info().Msg("fetching tags done")
			break
		}

		collected = append(collected, parsed.Results...)
		c.log.Info().Int("fetched", len(collected)).Int("limit", limit).Msg("fetched tag page")

		if len(collected) >= limit {
			break
		}

		if parsed.Next != nil {
			requestURL = *parsed.Next
		} else {
			requestURL = ""
		}
	}

	return collected, nil
}

// FetchMcr issues a single request and returns the entire list.
func (c *Client) FetchMcr(ctx context.Context, img image.Image) ([]mcrEntry, error) {
	requestURL, err := img.GetQueryURL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("image", img.GetFullName()).Msg("failed to send request to mcr")
		return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
	}
	defer resp.Body.Close()

	var entries []mcrEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		c.log.Error().Err(err).Msg("failed to parse mcr json response")
		return nil, fmt.Errorf("%s: %w", img.GetFullName(), ErrImageNotFound)
	}
	return entries, nil
}

// FetchGcr is a documented gap: GCR response parsing is unspecified, so this
// returns an explicit error rather than attempting a request or panicking.
func (c *Client) FetchGcr(ctx context.Context, img image.Image) error {
	return fmt.Errorf("gcr: %w", ErrNotImplemented)
}

// GetTags fetches and normalizes the tag list for img: optionally filters by
// architecture (normalized via containerd/platforms), parses each tag
// string, drops tags where both major and variant are absent, then sorts
// and deduplicates.
func (c *Client) GetTags(ctx context.Context, img image.Image, limit int, arch string) ([]tag.Tag, error) {
	normalizedArch := normalizeArch(arch)

	var names []string
	switch img.Registry {
	case image.Dockerhub:
		results, err := c.FetchDockerHub(ctx, img, limit)
		if err != nil {
			return nil, err
		}
		names = filterDockerHubByArch(results, normalizedArch)
	case image.Mcr:
		entries, err := c.FetchMcr(ctx, img)
		if err != nil {
			return nil, err
		}
		names = filterMcrByArch(entries, normalizedArch)
	case image.Gcr:
		if err := c.FetchGcr(ctx, img); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown registry for image %s", img.GetFullName())
	}

	return adaptTags(names), nil
}

func filterDockerHubByArch(results []dockerHubResult, arch string) []string {
	var names []string
	for _, r := range results {
		if arch == "" || anyImageMatchesArch(r.Images, arch) {
			names = append(names, r.Name)
		}
	}
	return names
}

func anyImageMatchesArch(images []dockerHubImg, arch string) bool {
	for _, i := range images {
		if i.Architecture == arch {
			return true
		}
	}
	return false
}

func filterMcrByArch(entries []mcrEntry, arch string) []string {
	var names []string
	for _, e := range entries {
		if arch == "" || (e.Architecture != nil && *e.Architecture == arch) {
			names = append(names, e.Name)
		}
	}
	return names
}

// adaptTags parses each tag string, drops pure-noise entries (no major and
// no variant), then sorts and deduplicates.
func adaptTags(names []string) []tag.Tag {
	var tags []tag.Tag
	for _, name := range names {
		t := tag.Parse(name)
		if t.Major == nil && t.Variant == nil {
			continue
		}
		tags = append(tags, t)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Less(tags[j]) })

	deduped := tags[:0]
	for i, t := range tags {
		if i == 0 || !deduped[len(deduped)-1].Equal(t) {
			deduped = append(deduped, t)
		}
	}
	return deduped
}

// normalizeArch passes colloquial arch strings (amd64, x86_64, arm64,
// aarch64, ...) through containerd/platforms so `--arch amd64` and
// `--arch x86_64` behave identically. An empty input stays empty (no
// filtering).
func normalizeArch(arch string) string {
	if arch == "" {
		return ""
	}
	p, err := platforms.Parse(arch)
	if err != nil {
		return arch
	}
	return platforms.Normalize(p).Architecture
}
