package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/saadjs/pantry-cli/internal/provider"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// The default data.gov key allows 1,000 requests an hour.
const RequestsPerMinute = 16

var ErrMissingAPIKey = errors.New("missing USDA API key")

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (provider.Product, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return provider.Product{}, nil, ErrMissingAPIKey
	}
	if err := provider.Wait(ctx, c.Limiter, "usda"); err != nil {
		return provider.Product{}, nil, err
	}
	baseURL := provider.BaseURL(c.BaseURL, defaultBaseURL)

	payload, err := json.Marshal(map[string]any{
		"query":    barcode,
		"dataType": []string{"Branded"},
		"pageSize": 20,
	})
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", provider.UserAgent)

	resp, err := provider.HTTPClient(c.HTTPClient).Do(req)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Product{}, body, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.Product{}, body, fmt.Errorf("decode USDA response: %w", err)
	}

	food, ok := selectBarcodeMatch(parsed.Foods, barcode)
	if !ok {
		return provider.Product{}, body, fmt.Errorf("no USDA branded food found for barcode %q", barcode)
	}

	brand := strings.TrimSpace(food.BrandName)
	if brand == "" {
		brand = strings.TrimSpace(food.BrandOwner)
	}
	var categories []string
	if c := strings.TrimSpace(food.BrandedFoodCategory); c != "" {
		categories = []string{c}
	}
	return provider.Product{
		Barcode:    barcode,
		Name:       strings.TrimSpace(food.Description),
		Brand:      brand,
		Quantity:   strings.TrimSpace(food.PackageWeight),
		Categories: categories,
	}, body, nil
}

// selectBarcodeMatch only accepts an exact GTIN match. Leading zeros are
// ignored since UPC-A and EAN-13 spell the same code with different padding.
func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	want := strings.TrimLeft(barcode, "0")
	for _, f := range foods {
		if strings.TrimLeft(strings.TrimSpace(f.GTINUPC), "0") == want && strings.TrimSpace(f.Description) != "" {
			return f, true
		}
	}
	return usdaFood{}, false
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID               int64  `json:"fdcId"`
	Description         string `json:"description"`
	BrandOwner          string `json:"brandOwner"`
	BrandName           string `json:"brandName"`
	GTINUPC             string `json:"gtinUpc"`
	BrandedFoodCategory string `json:"foodCategory"`
	PackageWeight       string `json:"packageWeight"`
}
