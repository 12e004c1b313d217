/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Payloads that are not record types. Records and change-sets go over
  the wire as the crm types themselves: crm.Party, crm.Opportunity and
  crm.ActionItem in responses, crm.PartyFields, crm.OpportunityFields and
  crm.ActionItemFields in request bodies.

NAMING CONVENTION:
  JSON fields use snake_case to match the column names.
*/
package api

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
