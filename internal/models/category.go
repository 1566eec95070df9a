package models

// Category is a flat display label used to group products.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (c Category) GetID() string { return c.ID }

// Color is a named color option. No hex value is attached.
type Color struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (c Color) GetID() string { return c.ID }

// NameDraft is the payload for creating or renaming a category or color.
type NameDraft struct {
	Name string `json:"name" validate:"required,notblank"`
}
