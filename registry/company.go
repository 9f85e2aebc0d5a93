package registry

import (
	"context"
	"fmt"
	"time"
)

// Company is the registry's profile of one registered entity
type Company struct {
	ID               int64      `json:"id"`
	Identifier       string     `json:"identifier"`
	Name             string     `json:"name"`
	FullName         string     `json:"full_name"`
	RegisterDate     *time.Time `json:"register_date"`
	LastRegisterDate *time.Time `json:"last_register_date"`
	LegalAddress     string     `json:"law_address"`
	Ownership        string     `json:"ownership"`
	SoleProprietor   bool       `json:"ip"`
	ActivityCode     string     `json:"oked_code"`
	ActivityName     string     `json:"oked_name"`
	Region           string     `json:"region"`
}

// Person is one natural or legal person referenced by ownership data
type Person struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Identifier *string `json:"identifier"`
	IsNatural  bool    `json:"person"`
}

// Owner describes the current management and founders of a company
type Owner struct {
	Identifier      string   `json:"identifier"`
	Status          string   `json:"status"`
	Owner           Person   `json:"owner"`
	AppointmentDate string   `json:"appointment_date"`
	Founders        []Person `json:"founder"`
	FoundersCount   int      `json:"founders_count"`
	RiskFactor      bool     `json:"owner_risk_factor_status"`
}

// PropertyStatus reports which asset classes the registry has on file
type PropertyStatus struct {
	Auto     bool
	Property bool
	Land     bool
}

// AdmFinesStatus summarizes outstanding administrative fines
type AdmFinesStatus struct {
	HasFines   bool
	TotalCount int
	Unpaid     int
}

// GetCompany fetches the company profile for a tax identifier
func (c *Client) GetCompany(ctx context.Context, taxID string) (*Company, error) {
	var company Company
	if err := c.getJSON(ctx, "/company/"+taxID, &company); err != nil {
		return nil, err
	}
	if company.Identifier == "" {
		return nil, fmt.Errorf("company payload missing identifier: %w", ErrMalformedPayload)
	}
	return &company, nil
}

// GetOwner fetches management and founder data for a tax identifier
func (c *Client) GetOwner(ctx context.Context, taxID string) (*Owner, error) {
	var owner Owner
	if err := c.getJSON(ctx, "/company/management/"+taxID, &owner); err != nil {
		return nil, err
	}
	if owner.Owner.Name == "" {
		return nil, fmt.Errorf("owner payload missing owner name: %w", ErrMalformedPayload)
	}
	return &owner, nil
}

type propertyStatusPayload struct {
	AutoStatus     string `json:"auto_status"`
	PropertyStatus string `json:"property_status"`
	LandStatus     string `json:"land_status"`
}

// GetPropertyStatus fetches registered-asset presence flags
func (c *Client) GetPropertyStatus(ctx context.Context, taxID string) (*PropertyStatus, error) {
	var payload propertyStatusPayload
	if err := c.getJSON(ctx, "/property/"+taxID+"/status", &payload); err != nil {
		return nil, err
	}
	return &PropertyStatus{
		Auto:     payload.AutoStatus == "YES",
		Property: payload.PropertyStatus == "YES",
		Land:     payload.LandStatus == "YES",
	}, nil
}

type admFinesPayload struct {
	Status     string `json:"status"`
	TotalCount int    `json:"total_count"`
	Unpaid     int    `json:"unpaid"`
}

// GetAdmFinesStatus fetches the administrative-fines summary
func (c *Client) GetAdmFinesStatus(ctx context.Context, taxID string) (*AdmFinesStatus, error) {
	var payload admFinesPayload
	if err := c.getJSON(ctx, "/adm_fines/"+taxID+"/status", &payload); err != nil {
		return nil, err
	}
	return &AdmFinesStatus{
		HasFines:   payload.Status == "YES",
		TotalCount: payload.TotalCount,
		Unpaid:     payload.Unpaid,
	}, nil
}

type yesNoPayload struct {
	Status string `json:"status"`
}

// GetTaxArrearStatus reports whether the registry flags tax arrears
func (c *Client) GetTaxArrearStatus(ctx context.Context, taxID string) (bool, error) {
	var payload yesNoPayload
	if err := c.getJSON(ctx, "/risk_factor_core/"+taxID+"/tax-arrears/status", &payload); err != nil {
		return false, err
	}
	return payload.Status == "YES", nil
}
