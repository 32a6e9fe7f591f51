package clinvar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkoziy/genome/curation/internal/ratelimit"
)

const defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

var baseURL = defaultBaseURL

const toolName = "gci-curation"

// Client calls the NCBI E-utilities for db=clinvar.
type Client struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	apiKey     string
	email      string
}

// NewClient creates a ClinVar client. Every request waits on limiter first.
func NewClient(limiter ratelimit.Limiter, apiKey, email string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		apiKey:     apiKey,
		email:      email,
	}
}

// Search runs an ESearch query and returns up to retMax ids.
func (c *Client) Search(ctx context.Context, term string, retMax int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(retMax))

	var result struct {
		ESearchResult SearchResponse `json:"esearchresult"`
	}
	if err := c.get(ctx, "esearch.fcgi", params, &result); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	return &result.ESearchResult, nil
}

// Summary returns the document summaries of ids in reply order. Ids without a document are skipped.
func (c *Client) Summary(ctx context.Context, ids []string) ([]VariationSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("id", strings.Join(ids, ","))

	var reply struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := c.get(ctx, "esummary.fcgi", params, &reply); err != nil {
		return nil, fmt.Errorf("esummary: %w", err)
	}

	var uids []string
	if raw, ok := reply.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &uids); err != nil {
			return nil, fmt.Errorf("esummary: decode uids: %w", err)
		}
	}

	out := make([]VariationSummary, 0, len(uids))
	for _, uid := range uids {
		raw, ok := reply.Result[uid]
		if !ok {
			continue
		}
		var s VariationSummary
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("esummary: decode %s: %w", uid, err)
		}
		if s.Error != "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("db", "clinvar")
	params.Set("retmode", "json")
	params.Set("tool", toolName)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	u := fmt.Sprintf("%s/%s?%s", baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
