package openfoodfacts

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

const defaultBaseURL = "https://world.openfoodfacts.org"

// Fair use asks for at most 100 product reads a minute.
const RequestsPerMinute = 100

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (provider.Product, []byte, error) {
	if err := provider.Wait(ctx, c.Limiter, "openfoodfacts"); err != nil {
		return provider.Product{}, nil, err
	}
	base := provider.BaseURL(c.BaseURL, defaultBaseURL)
	url := fmt.Sprintf("%s/api/v2/product/%s.json?fields=product_name,generic_name,brands,quantity,categories_tags", base, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", provider.UserAgent)

	resp, err := provider.HTTPClient(c.HTTPClient).Do(req)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Product{}, nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return provider.Product{}, body, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Product{}, body, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.Product{}, body, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	name := strings.TrimSpace(parsed.Product.ProductName)
	if name == "" {
		name = strings.TrimSpace(parsed.Product.GenericName)
	}
	if parsed.Status != 1 || name == "" {
		return provider.Product{}, body, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}

	return provider.Product{
		Barcode:    barcode,
		Name:       name,
		Brand:      firstBrand(parsed.Product.Brands),
		Quantity:   strings.TrimSpace(parsed.Product.Quantity),
		Categories: categoryTags(parsed.Product.CategoriesTags),
	}, body, nil
}

// firstBrand keeps the leading entry of a comma separated brand list.
func firstBrand(brands string) string {
	tags := provider.SplitTags(brands, ",")
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// categoryTags strips the language prefix from tags such as "en:dairies".
func categoryTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, rest, ok := strings.Cut(t, ":"); ok {
			t = rest
		}
		t = strings.ReplaceAll(strings.TrimSpace(t), "-", " ")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	ProductName    string   `json:"product_name"`
	GenericName    string   `json:"generic_name"`
	Brands         string   `json:"brands"`
	Quantity       string   `json:"quantity"`
	CategoriesTags []string `json:"categories_tags"`
}
