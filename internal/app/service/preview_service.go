package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/giftwish/giftwish-backend/config"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/giftwish/giftwish-backend/pkg/preview"
	"github.com/giftwish/giftwish-backend/pkg/redis"
)

var (
	ErrInvalidPreviewURL  = errors.New("preview URL must be absolute http or https")
	ErrPreviewFetchFailed = errors.New("failed to fetch the page for preview")
	ErrPreviewNotHTML     = errors.New("page did not return an HTML document")
)

// maxPreviewBody caps how much of a page the scraper will read.
const maxPreviewBody = 2 << 20

type PreviewService interface {
	Fetch(ctx context.Context, pageURL string) (*preview.Preview, error)
}

type previewService struct {
	client   *http.Client
	cfg      *config.PreviewConfig
	useCache bool
}

func NewPreviewService(cfg *config.PreviewConfig, useCache bool) PreviewService {
	return &previewService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:      cfg,
		useCache: useCache,
	}
}

// Fetch downloads the page and scrapes its preview metadata, consulting the
// Redis cache first when one is configured. Scrape results, including pages
// with no usable metadata, are cached to keep repeat lookups off the remote
// site.
func (s *previewService) Fetch(ctx context.Context, pageURL string) (*preview.Preview, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidPreviewURL
	}

	if s.useCache {
		if cached, err := redis.GetCachedPreview(ctx, pageURL); err == nil && cached != nil {
			var p preview.Preview
			if err := json.Unmarshal(cached, &p); err == nil {
				logger.Debug("Link preview served from cache", map[string]interface{}{
					"url": pageURL,
				})
				return &p, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, ErrInvalidPreviewURL
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GiftwishBot/1.0; link preview)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("Link preview fetch failed", map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		})
		return nil, ErrPreviewFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Link preview fetch returned non-2xx", map[string]interface{}{
			"url":    pageURL,
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", ErrPreviewFetchFailed, resp.StatusCode)
	}

	p, err := preview.Parse(io.LimitReader(resp.Body, maxPreviewBody), pageURL)
	if err != nil {
		return nil, ErrPreviewNotHTML
	}

	logger.Debug("Link preview scraped", map[string]interface{}{
		"url":         pageURL,
		"duration_ms": time.Since(start).Milliseconds(),
		"has_price":   p.PriceCents != nil,
	})

	if s.useCache {
		if payload, err := json.Marshal(p); err == nil {
			if err := redis.CachePreview(ctx, pageURL, payload, s.cfg.CacheTTL); err != nil {
				logger.Warn("Failed to cache link preview", map[string]interface{}{
					"url": pageURL,
				})
			}
		}
	}
	return p, nil
}
