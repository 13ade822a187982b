// Package dataforseo implements the keywords.Fetcher interface against the
// DataForSEO Labs ranked-keywords endpoint. Provider payloads are parsed
// into explicit types at this boundary and converted to domain records
// immediately; nothing loosely typed leaves this package.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords"
	"github.com/seo-tools/keyword-gap/pkg/services/retry"
	"golang.org/x/time/rate"
)

const (
	providerName       = "dataforseo"
	rankedKeywordsPath = "/v3/dataforseo_labs/google/ranked_keywords/live"

	// Provider-level status codes inside an HTTP 200 envelope.
	statusOK = 20000
)

type Config struct {
	BaseURL  string
	Login    string
	Password string
	// PageLimit caps the number of ranked keywords requested per domain.
	PageLimit int
	// RequestsPerSecond throttles calls against the provider account limit.
	RequestsPerSecond float64
	Retry             retry.Policy
	HTTPClient        *http.Client
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Policy
}

func NewClient(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 1000
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	policy.Retryable = keywords.IsRetryable

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry:   policy,
	}
}

// request and response payload shapes for the ranked-keywords endpoint.

type rankedKeywordsTask struct {
	Target       string `json:"target"`
	LocationName string `json:"location_name"`
	LanguageCode string `json:"language_code"`
	Limit        int    `json:"limit"`
}

type rankedKeywordsResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			TotalCount int          `json:"total_count"`
			Items      []rankedItem `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

type rankedItem struct {
	KeywordData struct {
		Keyword     string `json:"keyword"`
		KeywordInfo *struct {
			SearchVolume *int     `json:"search_volume"`
			CPC          *float64 `json:"cpc"`
		} `json:"keyword_info"`
		KeywordProperties *struct {
			KeywordDifficulty *int `json:"keyword_difficulty"`
		} `json:"keyword_properties"`
		SerpInfo *struct {
			SerpItemTypes []string `json:"serp_item_types"`
		} `json:"serp_info"`
	} `json:"keyword_data"`
	RankedSerpElement *struct {
		SerpItem *struct {
			RankAbsolute *int `json:"rank_absolute"`
		} `json:"serp_item"`
	} `json:"ranked_serp_element"`
}

// Fetch retrieves the ranked keywords for query.Domain. Transient provider
// failures are retried under the client's policy; a domain unknown to the
// provider yields an empty set.
func (c *Client) Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	var records []domain.KeywordRecord
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = c.fetchOnce(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) fetchOnce(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	language, location := splitMarket(query.Market)
	body, err := json.Marshal([]rankedKeywordsTask{{
		Target:       query.Domain,
		LocationName: location,
		LanguageCode: language,
		Limit:        c.cfg.PageLimit,
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal ranked keywords task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+rankedKeywordsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ranked keywords request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Login, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &keywords.FetchError{Provider: providerName, Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Unknown domain: a valid, if uninteresting, comparison input.
		return []domain.KeywordRecord{}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &keywords.FetchError{
			Provider:  providerName,
			Status:    resp.StatusCode,
			Message:   readErrorBody(resp.Body),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &keywords.FetchError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Message:  readErrorBody(resp.Body),
		}
	}

	var payload rankedKeywordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode ranked keywords response: %w", err)
	}
	if payload.StatusCode != statusOK {
		return nil, &keywords.FetchError{
			Provider: providerName,
			Status:   payload.StatusCode,
			Message:  payload.StatusMessage,
		}
	}

	records := make([]domain.KeywordRecord, 0)
	for _, task := range payload.Tasks {
		for _, result := range task.Result {
			for _, item := range result.Items {
				if rec, ok := mapItem(item); ok {
					records = append(records, rec)
				}
			}
		}
	}
	return records, nil
}

func mapItem(item rankedItem) (domain.KeywordRecord, bool) {
	data := item.KeywordData
	if data.Keyword == "" {
		return domain.KeywordRecord{}, false
	}

	rec := domain.KeywordRecord{Keyword: data.Keyword}
	if data.KeywordInfo != nil {
		rec.SearchVolume = data.KeywordInfo.SearchVolume
		rec.CPC = data.KeywordInfo.CPC
	}
	if data.KeywordProperties != nil {
		rec.Difficulty = data.KeywordProperties.KeywordDifficulty
	}
	if data.SerpInfo != nil {
		rec.SERPFeatures = data.SerpInfo.SerpItemTypes
	}
	if item.RankedSerpElement != nil && item.RankedSerpElement.SerpItem != nil {
		rec.Position = item.RankedSerpElement.SerpItem.RankAbsolute
	}
	return rec, true
}

// splitMarket turns a "en-US" style market into the provider's language
// code and location name. A market without a language prefix defaults to
// English.
func splitMarket(market string) (language, location string) {
	parts := strings.SplitN(market, "-", 2)
	if len(parts) == 2 {
		return strings.ToLower(parts[0]), locationName(parts[1])
	}
	return "en", locationName(market)
}

func locationName(code string) string {
	names := map[string]string{
		"US": "United States",
		"GB": "United Kingdom",
		"DE": "Germany",
		"FR": "France",
		"ES": "Spain",
		"AU": "Australia",
		"CA": "Canada",
	}
	if name, ok := names[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
