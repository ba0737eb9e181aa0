package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/pkg/log"
)

// maxSchemaPages bounds pagination in case the API keeps returning a cursor
const maxSchemaPages = 200

// SteamSchemaClient fetches the TF2 item schema from the Steam Web API
type SteamSchemaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSteamSchemaClient creates a new schema client
func NewSteamSchemaClient(baseURL, apiKey string, timeout time.Duration) *SteamSchemaClient {
	return &SteamSchemaClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type schemaItemsResponse struct {
	Result struct {
		Status int                 `json:"status"`
		Note   string              `json:"note"`
		Items  []domain.SchemaItem `json:"items"`
		Next   *int                `json:"next"`
	} `json:"result"`
}

// FetchItems downloads every schema item, following the "next" cursor
func (c *SteamSchemaClient) FetchItems(ctx context.Context) ([]domain.SchemaItem, error) {
	var items []domain.SchemaItem
	start := 0

	for page := 0; page < maxSchemaPages; page++ {
		resp, err := c.fetchPage(ctx, start)
		if err != nil {
			return nil, err
		}

		items = append(items, resp.Result.Items...)

		if resp.Result.Next == nil || *resp.Result.Next <= start {
			log.Info("item schema loaded", zap.Int("items", len(items)), zap.Int("pages", page+1))
			return items, nil
		}
		start = *resp.Result.Next
	}

	return nil, fmt.Errorf("item schema did not finish after %d pages", maxSchemaPages)
}

func (c *SteamSchemaClient) fetchPage(ctx context.Context, start int) (*schemaItemsResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema URL: %w", err)
	}

	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("language", "en")
	q.Set("start", strconv.Itoa(start))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("steam schema API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var schemaResp schemaItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&schemaResp); err != nil {
		return nil, fmt.Errorf("failed to decode schema response: %w", err)
	}

	if schemaResp.Result.Status != 1 {
		return nil, fmt.Errorf("steam schema API returned status %d: %s", schemaResp.Result.Status, schemaResp.Result.Note)
	}

	return &schemaResp, nil
}
