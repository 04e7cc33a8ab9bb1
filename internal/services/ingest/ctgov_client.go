package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the ClinicalTrials.gov Data API.
	DefaultBaseURL = "https://clinicaltrials.gov/api/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	// DefaultPageSize is the default number of studies per API page.
	DefaultPageSize = 50
)

// Study is one record from the Data API /studies endpoint. Only the modules
// the ingestion pipeline reads are decoded.
type Study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID         string `json:"nctId"`
			BriefTitle    string `json:"briefTitle"`
			OfficialTitle string `json:"officialTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		SponsorCollaboratorsModule struct {
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
		} `json:"sponsorCollaboratorsModule"`
		DescriptionModule struct {
			BriefSummary        string `json:"briefSummary"`
			DetailedDescription string `json:"detailedDescription"`
		} `json:"descriptionModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		EligibilityModule struct {
			EligibilityCriteria string `json:"eligibilityCriteria"`
			Sex                 string `json:"sex"`
			MinimumAge          string `json:"minimumAge"`
			MaximumAge          string `json:"maximumAge"`
		} `json:"eligibilityModule"`
		ArmsInterventionsModule struct {
			ArmGroups []struct {
				Label       string `json:"label"`
				Description string `json:"description"`
			} `json:"armGroups"`
			Interventions []Intervention `json:"interventions"`
		} `json:"armsInterventionsModule"`
		OutcomesModule struct {
			PrimaryOutcomes []struct {
				Measure     string `json:"measure"`
				Description string `json:"description"`
			} `json:"primaryOutcomes"`
		} `json:"outcomesModule"`
	} `json:"protocolSection"`
}

// Intervention is one study arm intervention (drug, radiation, procedure).
type Intervention struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type studiesPage struct {
	Studies       []Study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
}

// APIError is returned when the Data API responds with a non-200 status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clinicaltrials.gov API returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Client is a rate-limited ClinicalTrials.gov Data API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	pageSize   int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit in requests per second.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// WithPageSize sets the number of studies requested per API page.
func WithPageSize(pageSize int) ClientOption {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
	}
}

// NewClient creates a new ClinicalTrials.gov Data API client.
func NewClient(logger arbor.ILogger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		pageSize: DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchStudies retrieves study records matching the query terms and filter
// parameters, following pageToken pagination up to maxStudies records
// (maxStudies <= 0 means no cap).
func (c *Client) FetchStudies(ctx context.Context, queryTerms []string, filters map[string][]string, maxStudies int) ([]Study, error) {
	base := url.Values{}
	base.Set("format", "json")
	base.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	for _, term := range queryTerms {
		base.Add("query.term", term)
	}
	for key, values := range filters {
		for _, value := range values {
			base.Add(key, value)
		}
	}

	var (
		collected []Study
		nextToken string
	)

	for {
		params := url.Values{}
		for key, values := range base {
			params[key] = values
		}
		if nextToken != "" {
			params.Set("pageToken", nextToken)
		}

		var page studiesPage
		if err := c.get(ctx, "/studies", params, &page); err != nil {
			return nil, err
		}

		collected = append(collected, page.Studies...)

		if maxStudies > 0 && len(collected) >= maxStudies {
			return collected[:maxStudies], nil
		}

		nextToken = page.NextPageToken
		if nextToken == "" {
			break
		}
	}

	return collected, nil
}

// get performs a rate-limited GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trialwhisperer/ingest (+https://clinicaltrials.gov)")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("ClinicalTrials.gov API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
