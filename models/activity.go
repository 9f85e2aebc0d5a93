package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Guarantee holds the loan-guarantee terms attached to a CRM activity
type Guarantee struct {
	Bank             string    `json:"bank"`
	CreditPeriod     int       `json:"credit_period"`
	CreditingPurpose string    `json:"crediting_purpose"`
	CreditAmount     float64   `json:"credit_amount"`
	RegistrationDate time.Time `json:"registration_date"`
	GuaranteeAmount  float64   `json:"guarantee_amount"`
	GuaranteePeriod  int       `json:"guarantee_period"`
}

// Value implements driver.Valuer for JSONB
func (g Guarantee) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB
func (g *Guarantee) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, g)
}

// Participant is one party named on a guarantee application
type Participant struct {
	Role      string  `json:"role"`
	Name      string  `json:"name"`
	TaxID     string  `json:"tax_id"`
	IDNumber  *string `json:"id_number,omitempty"`
	IDDate    *string `json:"id_date,omitempty"`
	IsCompany bool    `json:"is_company"`
}

// ParticipantList is the set of parties on one application
type ParticipantList []Participant

// Value implements driver.Valuer for JSONB
func (p ParticipantList) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *ParticipantList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// GuaranteeFile references one attachment stored in the CRM
type GuaranteeFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Activity represents one loan-guarantee application pulled from the CRM
type Activity struct {
	ID                uuid.UUID       `json:"id"`
	GuaranteeID       string          `json:"guarantee_id"`
	ResponsiblePerson string          `json:"responsible_person"`
	TaxID             string          `json:"tax_id"` // applicant company/owner identifier
	Guarantee         *Guarantee      `json:"guarantee,omitempty"`
	Participants      ParticipantList `json:"participants,omitempty"`
	ReportContent     *string         `json:"report_content,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}
