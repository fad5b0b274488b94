package service

import "fmt"

// A discountPrice of zero means the product is not discounted.
func validatePricing(price, discountPrice float64) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if discountPrice < 0 {
		return fmt.Errorf("discountPrice must not be negative")
	}
	if discountPrice > 0 && discountPrice >= price {
		return fmt.Errorf("discountPrice must be less than price")
	}
	return nil
}

func isDiscounted(price, discountPrice float64) bool {
	return discountPrice > 0 && discountPrice < price
}

// EffectivePrice is what the storefront shows as the current price.
func EffectivePrice(price, discountPrice float64) float64 {
	if isDiscounted(price, discountPrice) {
		return discountPrice
	}
	return price
}

// resolvePricing applies a partial update on top of the stored prices and
// validates the outcome.
func resolvePricing(existingPrice, existingDiscount float64, price, discountPrice *float64) (float64, float64, error) {
	resolvedPrice := existingPrice
	resolvedDiscount := existingDiscount
	if price != nil {
		resolvedPrice = *price
	}
	if discountPrice != nil {
		resolvedDiscount = *discountPrice
	}
	if err := validatePricing(resolvedPrice, resolvedDiscount); err != nil {
		return 0, 0, err
	}
	return resolvedPrice, resolvedDiscount, nil
}
