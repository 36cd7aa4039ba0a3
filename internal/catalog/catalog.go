package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrUnavailable means the upstream bestseller source could not be reached
	// or returned something we could not parse.
	ErrUnavailable = errors.New("catalog unavailable")

	// ErrEmpty means the source answered but had no candidates to offer.
	ErrEmpty = errors.New("catalog is empty")
)

// Product is one bestseller candidate. Immutable once fetched.
type Product struct {
	ASIN       string `json:"asin"`
	Name       string `json:"name"`
	Bestseller bool   `json:"bestseller"`
}

// Provider supplies the day's candidate products in a stable order.
type Provider interface {
	FetchCandidates(ctx context.Context) ([]Product, error)
}

// StaticProvider serves a fixed candidate list. Used as the default source and
// as the zero-dependency path for local runs.
type StaticProvider struct {
	products []Product
}

func NewStaticProvider(products []Product) *StaticProvider {
	return &StaticProvider{products: products}
}

// DefaultBestsellers is the built-in skincare bestseller list used when no
// feed or store is configured.
func DefaultBestsellers() []Product {
	return []Product{
		{ASIN: "B0B2RM68G2", Name: "BIODANCE Bio-Collagen Mask", Bestseller: true},
		{ASIN: "B07NCRQL81", Name: "The Ordinary Niacinamide Serum", Bestseller: true},
		{ASIN: "B01LTH7GKK", Name: "CeraVe Moisturizing Cream", Bestseller: false},
		{ASIN: "B00TTD9BRC", Name: "Cetaphil Gentle Skin Cleanser", Bestseller: false},
		{ASIN: "B09JKHNFLW", Name: "medicube Age-R Toner Pads", Bestseller: true},
	}
}

func (p *StaticProvider) FetchCandidates(_ context.Context) ([]Product, error) {
	out := make([]Product, len(p.products))
	copy(out, p.products)
	return out, nil
}

const defaultFeedTimeout = 30 * time.Second

// FeedProvider fetches candidates from an HTTP endpoint returning a JSON array
// of {asin, name, bestseller} objects.
type FeedProvider struct {
	feedURL    string
	httpClient *http.Client
}

func NewFeedProvider(feedURL string) *FeedProvider {
	return &FeedProvider{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: defaultFeedTimeout,
		},
	}
}

func (p *FeedProvider) FetchCandidates(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch feed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: decode feed: %v", ErrUnavailable, err)
	}

	slog.Debug("fetched catalog feed", "url", p.feedURL, "candidates", len(products))
	return products, nil
}
