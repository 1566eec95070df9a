package models

import "fmt"

// ContactMessage is the public contact form.
type ContactMessage struct {
	Name    string `json:"name" form:"name" validate:"required,notblank"`
	Email   string `json:"email" form:"email" validate:"required,notblank"`
	Message string `json:"message" form:"message" validate:"required,notblank"`
}

// AvailabilityInquiry is the message used to prefill the contact form when
// the visitor arrives from a product page.
func AvailabilityInquiry(productName string) string {
	return fmt.Sprintf("Hi, I'd like to ask about the availability of: %s.", productName)
}
