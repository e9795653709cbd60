package request

import (
	"strings"

	"mis_invoicing/internal/domain/entities"
)

type ClientRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	GSTNumber string `json:"gst_number"`
	Category  string `json:"category"`
}

func (r ClientRequest) ToEntity() entities.Client {
	return entities.Client{
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Address:   strings.TrimSpace(r.Address),
		GSTNumber: strings.ToUpper(strings.TrimSpace(r.GSTNumber)),
		Category:  strings.TrimSpace(r.Category),
	}
}
