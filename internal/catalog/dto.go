package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashya/shoppy-backend/pkg/db/models"
)

// CategoryDTO is the category list payload.
type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ImageURL     *string   `json:"image_url,omitempty"`
	ProductCount int64     `json:"product_count"`
}

// VariantDTO is a sellable variant inside a product payload.
type VariantDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	MRP       decimal.Decimal `json:"mrp"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// ProductDTO is the product list/detail payload. StartPrice and EndPrice are
// the min and max variant prices, giving the storefront its "from X" range.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Available   bool             `json:"available"`
	StartPrice  *decimal.Decimal `json:"start_price,omitempty"`
	EndPrice    *decimal.Decimal `json:"end_price,omitempty"`
	ImageURLs   []string         `json:"image_urls"`
	Variants    []VariantDTO     `json:"variants"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ImageURL joins the media base with the stored object key.
func ImageURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func toVariantDTO(v models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:        v.ID,
		Name:      v.Name,
		MRP:       v.MRP,
		Price:     v.Price,
		Stock:     v.Stock,
		Available: v.Available,
	}
}

// ToProductDTO converts a product row with its preloaded variants and images
// into the response payload.
func ToProductDTO(p models.Product, mediaBaseURL string) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Available:   p.Available,
		ImageURLs:   make([]string, 0, len(p.Images)),
		Variants:    make([]VariantDTO, 0, len(p.Variants)),
		CreatedAt:   p.CreatedAt,
	}

	for _, pi := range p.Images {
		if pi.Image != nil {
			dto.ImageURLs = append(dto.ImageURLs, ImageURL(mediaBaseURL, pi.Image.Path))
		}
	}

	for _, v := range p.Variants {
		dto.Variants = append(dto.Variants, toVariantDTO(v))
		if !v.Available {
			continue
		}
		price := v.Price
		if dto.StartPrice == nil || price.LessThan(*dto.StartPrice) {
			p := price
			dto.StartPrice = &p
		}
		if dto.EndPrice == nil || price.GreaterThan(*dto.EndPrice) {
			p := price
			dto.EndPrice = &p
		}
	}

	return dto
}

func toProductDTOs(list []models.Product, mediaBaseURL string) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductDTO(p, mediaBaseURL))
	}
	return out
}
