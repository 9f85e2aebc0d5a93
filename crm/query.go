package crm

// The CRM's DataService takes declarative select payloads. Only the
// fragments these call sites need are modeled here.

type selectQueryPayload struct {
	RootSchemaName string                 `json:"rootSchemaName"`
	Columns        map[string]column      `json:"columns"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

type column struct {
	Path string `json:"path"`
}

const unfinishedStatusID = "201cfba8-58e6-df11-971b-001d60e938c6"

// activitiesQuery selects activities still awaiting a report
func activitiesQuery() selectQueryPayload {
	return selectQueryPayload{
		RootSchemaName: "Activity",
		Columns: map[string]column{
			"Guarantee":    {Path: "Guarantee"},
			"Owner":        {Path: "Owner"},
			"Company":      {Path: "Company"},
			"CompanyTaxId": {Path: "Company.TaxId"},
		},
		Filters: map[string]interface{}{
			"Status": unfinishedStatusID,
		},
	}
}

// participantsQuery selects the parties named on one guarantee
func participantsQuery(guaranteeID string) selectQueryPayload {
	return selectQueryPayload{
		RootSchemaName: "GuaranteeParticipant",
		Columns: map[string]column{
			"Role":      {Path: "Role"},
			"Name":      {Path: "Contact.Name"},
			"TaxId":     {Path: "Contact.TaxId"},
			"IdNumber":  {Path: "Contact.IdNumber"},
			"IdDate":    {Path: "Contact.IdDate"},
			"IsCompany": {Path: "Contact.IsCompany"},
		},
		Filters: map[string]interface{}{
			"Guarantee": guaranteeID,
		},
	}
}

// guaranteeFilesQuery selects the attachments uploaded to one guarantee
func guaranteeFilesQuery(guaranteeID string) selectQueryPayload {
	return selectQueryPayload{
		RootSchemaName: "GuaranteeFile",
		Columns: map[string]column{
			"Id":   {Path: "Id"},
			"Name": {Path: "Name"},
		},
		Filters: map[string]interface{}{
			"Guarantee": guaranteeID,
		},
	}
}

// guaranteeQuery selects the guarantee record by primary key
func guaranteeQuery(guaranteeID string) selectQueryPayload {
	return selectQueryPayload{
		RootSchemaName: "Guarantee",
		Columns: map[string]column{
			"Bank":             {Path: "Bank"},
			"CreditPeriod":     {Path: "CreditPeriod"},
			"CreditingPurpose": {Path: "CreditingPurpose"},
			"CreditAmount":     {Path: "CreditAmount"},
			"RegistrationDate": {Path: "RegistrationDate"},
			"GuaranteeAmount":  {Path: "GuaranteeAmount"},
			"GuaranteePeriod":  {Path: "GuaranteePeriod"},
		},
		Filters: map[string]interface{}{
			"Id": guaranteeID,
		},
	}
}
