package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/saadjs/pantry-cli/internal/provider"
)

const defaultBaseURL = "https://api.upcitemdb.com"

// The trial endpoint allows 100 requests a day, bursting up to 6 a minute.
const TrialRequestsPerMinute = 6

type Client struct {
	BaseURL    string
	APIKey     string
	APIKeyType string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (provider.Product, []byte, error) {
	if err := provider.Wait(ctx, c.Limiter, "upcitemdb"); err != nil {
		return provider.Product{}, nil, err
	}
	base := provider.BaseURL(c.BaseURL, defaultBaseURL)
	path := "/prod/trial/lookup"
	if strings.TrimSpace(c.APIKey) != "" {
		path = "/prod/v1/lookup"
	}
	url := fmt.Sprintf("%s%s?upc=%s", base, path, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("create upcitemdb request: %w", err)
	}
	if strings.TrimSpace(c.APIKey) != "" {
		keyType := strings.TrimSpace(c.APIKeyType)
		if keyType == "" {
			keyType = "3scale"
		}
		req.Header.Set("key_type", keyType)
		req.Header.Set("user_key", strings.TrimSpace(c.APIKey))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", provider.UserAgent)

	resp, err := provider.HTTPClient(c.HTTPClient).Do(req)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("execute upcitemdb request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("read upcitemdb response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return provider.Product{}, body, fmt.Errorf("upcitemdb rate limit exceeded")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Product{}, body, fmt.Errorf("upcitemdb request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.Product{}, body, fmt.Errorf("decode upcitemdb response: %w", err)
	}
	if strings.ToUpper(parsed.Code) != "OK" || len(parsed.Items) == 0 || strings.TrimSpace(parsed.Items[0].Title) == "" {
		return provider.Product{}, body, fmt.Errorf("no upcitemdb product found for barcode %q", barcode)
	}
	item := parsed.Items[0]

	return provider.Product{
		Barcode:    barcode,
		Name:       strings.TrimSpace(item.Title),
		Brand:      strings.TrimSpace(item.Brand),
		Quantity:   strings.TrimSpace(item.Size),
		Categories: provider.SplitTags(item.Category, ">"),
	}, body, nil
}

type response struct {
	Code  string `json:"code"`
	Items []item `json:"items"`
}

type item struct {
	Title    string `json:"title"`
	Brand    string `json:"brand"`
	Size     string `json:"size"`
	Category string `json:"category"`
}
