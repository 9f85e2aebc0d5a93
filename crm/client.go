package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"diligence-backend/models"
)

var (
	ErrNotAuthenticated = errors.New("crm session not authenticated")
	ErrActivityNotFound = errors.New("crm activity not found")
	ErrMalformedPayload = errors.New("malformed crm payload")
)

const defaultHTTPTimeout = 60 * time.Second

// Client talks to the CRM the guarantee applications live in. The CRM
// uses cookie-session auth with a CSRF token echoed back as a header.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	csrfToken string
	loggedIn  bool
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client. The client's cookie
// jar is replaced so the session cookies survive between calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a CRM client
func NewClient(baseURL, username, password string, opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	return c
}

// Login establishes the cookie session and captures the CSRF token
func (c *Client) Login(ctx context.Context) error {
	credentials := map[string]interface{}{
		"UserName":       c.username,
		"UserPassword":   c.password,
		"TimeZoneOffset": -300,
	}
	data, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/servicemodel/authservice.svc/login", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.loggedIn = false
		return fmt.Errorf("login returned %d: %w", resp.StatusCode, ErrNotAuthenticated)
	}

	// The CSRF token arrives as a cookie and must be echoed as a header.
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "BPMCSRF" {
			c.csrfToken = cookie.Value
		}
	}
	if c.csrfToken == "" {
		c.loggedIn = false
		return fmt.Errorf("login response missing CSRF cookie: %w", ErrNotAuthenticated)
	}

	c.loggedIn = true
	return nil
}

func (c *Client) ensureSession(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// lookupValue is the CRM's {value, displayValue} reference cell
type lookupValue struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

type activityRow struct {
	Guarantee lookupValue `json:"Guarantee"`
	Owner     lookupValue `json:"Owner"`
	Company   lookupValue `json:"Company"`
	TaxID     string      `json:"CompanyTaxId"`
}

type selectResponse struct {
	Rows json.RawMessage `json:"rows"`
}

// selectQuery runs one CRM SelectQuery and decodes the rows into out
func (c *Client) selectQuery(ctx context.Context, query interface{}, out interface{}) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/0/DataService/json/SyncReply/SelectQuery", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("BPMCSRF", c.csrfToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.loggedIn = false
		return ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("query returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var envelope selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode query response: %w", ErrMalformedPayload)
	}
	if err := json.Unmarshal(envelope.Rows, out); err != nil {
		return fmt.Errorf("failed to decode query rows: %w", ErrMalformedPayload)
	}
	return nil
}

// GetUnfinishedActivities lists guarantee applications that still need a
// due-diligence report
func (c *Client) GetUnfinishedActivities(ctx context.Context) ([]models.Activity, error) {
	var rows []activityRow
	if err := c.selectQuery(ctx, activitiesQuery(), &rows); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(rows))
	for _, row := range rows {
		if row.Guarantee.Value == "" {
			continue
		}
		activities = append(activities, models.Activity{
			GuaranteeID:       row.Guarantee.DisplayValue,
			ResponsiblePerson: row.Owner.DisplayValue,
			TaxID:             row.TaxID,
		})
	}
	return activities, nil
}

type guaranteeRow struct {
	Bank             lookupValue `json:"Bank"`
	CreditPeriod     int         `json:"CreditPeriod"`
	CreditingPurpose lookupValue `json:"CreditingPurpose"`
	CreditAmount     float64     `json:"CreditAmount"`
	RegistrationDate string      `json:"RegistrationDate"`
	GuaranteeAmount  float64     `json:"GuaranteeAmount"`
	GuaranteePeriod  int         `json:"GuaranteePeriod"`
}

// GetGuarantee fetches the guarantee terms attached to an application
func (c *Client) GetGuarantee(ctx context.Context, guaranteeID string) (*models.Guarantee, error) {
	var rows []guaranteeRow
	if err := c.selectQuery(ctx, guaranteeQuery(guaranteeID), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrActivityNotFound
	}

	row := rows[0]
	registered, err := time.Parse(time.RFC3339, row.RegistrationDate)
	if err != nil {
		return nil, fmt.Errorf("bad registration date %q: %w", row.RegistrationDate, ErrMalformedPayload)
	}

	return &models.Guarantee{
		Bank:             row.Bank.DisplayValue,
		CreditPeriod:     row.CreditPeriod,
		CreditingPurpose: row.CreditingPurpose.DisplayValue,
		CreditAmount:     row.CreditAmount,
		RegistrationDate: registered,
		GuaranteeAmount:  row.GuaranteeAmount,
		GuaranteePeriod:  row.GuaranteePeriod,
	}, nil
}

type participantRow struct {
	Role      lookupValue `json:"Role"`
	Name      string      `json:"Name"`
	TaxID     string      `json:"TaxId"`
	IDNumber  *string     `json:"IdNumber"`
	IDDate    *string     `json:"IdDate"`
	IsCompany bool        `json:"IsCompany"`
}

// GetParticipants lists the parties named on a guarantee application
func (c *Client) GetParticipants(ctx context.Context, guaranteeID string) (models.ParticipantList, error) {
	var rows []participantRow
	if err := c.selectQuery(ctx, participantsQuery(guaranteeID), &rows); err != nil {
		return nil, err
	}

	participants := make(models.ParticipantList, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		participants = append(participants, models.Participant{
			Role:      row.Role.DisplayValue,
			Name:      row.Name,
			TaxID:     row.TaxID,
			IDNumber:  row.IDNumber,
			IDDate:    row.IDDate,
			IsCompany: row.IsCompany,
		})
	}
	return participants, nil
}

type fileRow struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// GetGuaranteeFiles lists the attachments uploaded to a guarantee
func (c *Client) GetGuaranteeFiles(ctx context.Context, guaranteeID string) ([]models.GuaranteeFile, error) {
	var rows []fileRow
	if err := c.selectQuery(ctx, guaranteeFilesQuery(guaranteeID), &rows); err != nil {
		return nil, err
	}

	files := make([]models.GuaranteeFile, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		files = append(files, models.GuaranteeFile{ID: row.ID, Name: row.Name})
	}
	return files, nil
}

// DownloadFile streams one attachment from the CRM file service
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/0/rest/FileService/GetFile/"+fileID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("BPMCSRF", c.csrfToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		c.loggedIn = false
		return nil, ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	return resp.Body, nil
}
