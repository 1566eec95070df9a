package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/apiclient"
	"storefront/internal/models"
)

// HTTPRepository is a Repository backed by the catalog backend's REST API.
type HTTPRepository[T models.Entity, D any] struct {
	client   *apiclient.Client
	listPath string
	basePath string
	encode   func(D) (apiclient.Body, error)
}

// NewHTTPProductRepository reads the public product list and writes products
// as multipart forms so images can be uploaded.
func NewHTTPProductRepository(client *apiclient.Client) *HTTPRepository[models.Product, models.ProductDraft] {
	return &HTTPRepository[models.Product, models.ProductDraft]{
		client:   client,
		listPath: "/api/products/public",
		basePath: "/api/products",
		encode:   productForm,
	}
}

// NewHTTPCategoryRepository creates the category repository.
func NewHTTPCategoryRepository(client *apiclient.Client) *HTTPRepository[models.Category, models.NameDraft] {
	return &HTTPRepository[models.Category, models.NameDraft]{
		client:   client,
		listPath: "/api/categories/public",
		basePath: "/api/categories",
		encode:   jsonBody[models.NameDraft],
	}
}

// NewHTTPColorRepository creates the color repository.
func NewHTTPColorRepository(client *apiclient.Client) *HTTPRepository[models.Color, models.NameDraft] {
	return &HTTPRepository[models.Color, models.NameDraft]{
		client:   client,
		listPath: "/api/colors",
		basePath: "/api/colors",
		encode:   jsonBody[models.NameDraft],
	}
}

// List retrieves the whole collection.
func (r *HTTPRepository[T, D]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	if err := r.client.Do(ctx, r.listPath, apiclient.RequestOptions{}, &items); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.basePath, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create sends draft and returns the record as stored by the backend.
func (r *HTTPRepository[T, D]) Create(ctx context.Context, draft D) (T, error) {
	return r.write(ctx, http.MethodPost, r.basePath, draft)
}

// Update sends patch for id and returns the record as stored by the backend.
func (r *HTTPRepository[T, D]) Update(ctx context.Context, id string, patch D) (T, error) {
	return r.write(ctx, http.MethodPut, r.basePath+"/"+url.PathEscape(id), patch)
}

// Delete removes id on the backend.
func (r *HTTPRepository[T, D]) Delete(ctx context.Context, id string) error {
	opts := apiclient.RequestOptions{Method: http.MethodDelete}
	if _, err := r.client.Request(ctx, r.basePath+"/"+url.PathEscape(id), opts); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", r.basePath, id, err)
	}
	return nil
}

func (r *HTTPRepository[T, D]) write(ctx context.Context, method, endpoint string, payload D) (T, error) {
	var out T
	body, err := r.encode(payload)
	if err != nil {
		return out, err
	}
	data, err := r.client.Request(ctx, endpoint, apiclient.RequestOptions{Method: method, Body: body})
	if err != nil {
		return out, fmt.Errorf("failed to %s %s: %w", method, endpoint, err)
	}
	if data == nil {
		return out, fmt.Errorf("empty response from %s %s", method, endpoint)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return out, nil
}

func jsonBody[D any](d D) (apiclient.Body, error) {
	return apiclient.JSON{Value: d}, nil
}

// productForm builds the multipart payload expected by the product
// endpoints. Removed images travel as a JSON array of storage identifiers.
func productForm(d models.ProductDraft) (apiclient.Body, error) {
	form := apiclient.NewMultipart().
		Field("name", d.Name).
		Field("description", d.Description).
		Field("price", strconv.FormatFloat(d.Price, 'f', -1, 64))
	for _, s := range d.Sizes {
		form.Field("sizes", s)
	}
	for _, c := range d.Colors {
		form.Field("colors", c)
	}
	for _, c := range d.Categories {
		form.Field("categories", c)
	}
	for _, img := range d.Images {
		form.File("images", img.Filename, img.Data)
	}
	if len(d.DeletedImages) > 0 {
		ids := make([]string, 0, len(d.DeletedImages))
		for _, loc := range d.DeletedImages {
			ids = append(ids, models.StoragePublicID(loc))
		}
		encoded, err := json.Marshal(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to encode deleted images: %w", err)
		}
		form.Field("deletedImages", string(encoded))
	}
	return form, nil
}
