package models

import "strings"

// Sizes offered by the catalog, in display order.
var Sizes = []string{"S", "M", "G", "XG"}

// Product represents a product in the store.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Sizes       []string `json:"sizes"`
	Colors      []Ref    `json:"colors"`
	Categories  []Ref    `json:"categories"`
	Images      []string `json:"images"`
	Image       string   `json:"image,omitempty"` // single-image records predating Images
}

func (p Product) GetID() string { return p.ID }

// PrimaryImage is the first image location, falling back to Image.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Image
}

// SecondaryImage is the image shown on hover, empty when there is none.
func (p Product) SecondaryImage() string {
	if len(p.Images) > 1 {
		return p.Images[1]
	}
	return ""
}

// InCategory reports whether the product is tagged with a category of that name.
func (p Product) InCategory(name string) bool {
	for _, c := range p.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SharesCategory reports whether p and other have a category name in common.
func (p Product) SharesCategory(other Product) bool {
	for _, c := range other.Categories {
		if p.InCategory(c.Name) {
			return true
		}
	}
	return false
}

// ProductDraft is the admin form payload for creating or updating a product.
type ProductDraft struct {
	Name          string        `json:"name" validate:"required,notblank"`
	Description   string        `json:"description" validate:"required,notblank"`
	Price         float64       `json:"price" validate:"required"`
	Sizes         []string      `json:"sizes"`
	Colors        []string      `json:"colors"`
	Categories    []string      `json:"categories"`
	Images        []ImageUpload `json:"-"`
	DeletedImages []string      `json:"deletedImages"`
}

// ImageUpload is a new image file attached to a ProductDraft.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// DraftFromProduct fills the edit form from an existing product.
func DraftFromProduct(p Product) ProductDraft {
	return ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Sizes:       append([]string(nil), p.Sizes...),
		Colors:      RefIDs(p.Colors),
		Categories:  RefIDs(p.Categories),
	}
}

// StoragePublicID derives the image storage identifier from an image URL:
// the last two path segments with the extension removed.
// "https://cdn/x/upload/v1/shop/abc.jpg" -> "shop/abc".
func StoragePublicID(location string) string {
	parts := strings.Split(location, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	id := strings.Join(parts, "/")
	if i := strings.Index(id, "."); i >= 0 {
		id = id[:i]
	}
	return id
}

// ResolveImage turns an image location into an absolute URL. Locations that
// already start with "http" are returned unchanged; others are relative to
// the backend origin.
func ResolveImage(origin, location string) string {
	if location == "" || strings.HasPrefix(location, "http") {
		return location
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(location, "/")
}
