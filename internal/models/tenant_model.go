package models

type Tenant struct {
	Domain         string `json:"domain"`
	BusinessName   string `json:"business_name"`
	Status         string `json:"status"`
	Brief          string `json:"brief"`
	Industry       string `json:"industry"`
	Language       string `json:"language"`
	AssignedFolder string `json:"assigned_folder"`
}

const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)
