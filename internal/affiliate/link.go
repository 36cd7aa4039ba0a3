package affiliate

import (
	"errors"
	"fmt"
	"strings"
)

// MarketplaceBaseURL is the storefront all outbound links point at.
const MarketplaceBaseURL = "https://www.amazon.com"

// ErrInvalidProductID means the product identifier was empty or whitespace.
var ErrInvalidProductID = errors.New("invalid product id")

// Link builds the trackable outbound URL for a product. Pure function of its
// inputs: the same ASIN and tag always produce the identical string.
func Link(asin, tag string) (string, error) {
	if strings.TrimSpace(asin) == "" {
		return "", ErrInvalidProductID
	}
	return fmt.Sprintf("%s/dp/%s/?tag=%s", MarketplaceBaseURL, asin, tag), nil
}

// ProductURL is the plain (untagged) storefront URL for a product.
func ProductURL(asin string) (string, error) {
	if strings.TrimSpace(asin) == "" {
		return "", ErrInvalidProductID
	}
	return fmt.Sprintf("%s/dp/%s/", MarketplaceBaseURL, asin), nil
}
