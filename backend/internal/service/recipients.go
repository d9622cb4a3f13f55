package service

import (
	"github.com/mahalaxmi-group/site-api/shared/domain"
)

// DefaultFormType is assumed when a submission names no form.
const DefaultFormType = "general"

var formLabels = map[domain.FormType]string{
	"general":    "General Inquiry",
	"product":    "Product Sales",
	"dist":       "Distributor Inquiry",
	"oem":        "OEM Partnership",
	"chemicals":  "Chemicals Division",
	"millennium": "Millennium Division",
	"shiv":       "Shiv Minerals",
	"transport":  "Transport & Logistics",
	"infra":      "Infrastructure",
	"callback":   "Callback Request",
	"inquiry":    "Product Inquiry",
}

// FormLabel is the human name of a form type used in subjects and mail bodies.
func FormLabel(formType domain.FormType) string {
	if label, ok := formLabels[formType]; ok {
		return label
	}
	return "Website Inquiry"
}

// RecipientDirectory maps form types to destination mailboxes.
type RecipientDirectory struct {
	addresses map[domain.FormType]domain.Email
	fallback  domain.Email
}

func NewRecipientDirectory(addresses map[string]string, fallback domain.Email) *RecipientDirectory {
	copied := make(map[domain.FormType]domain.Email, len(addresses))
	for formType, address := range addresses {
		if address != "" {
			copied[formType] = address
		}
	}
	return &RecipientDirectory{addresses: copied, fallback: fallback}
}

// Empty means no mailbox is configured at all; the pipeline refuses to run.
func (d *RecipientDirectory) Empty() bool {
	return d == nil || len(d.addresses) == 0
}

// Resolve tries the form type, then "general", then the fallback address.
func (d *RecipientDirectory) Resolve(formType domain.FormType) domain.Email {
	if address, ok := d.addresses[formType]; ok {
		return address
	}
	if address, ok := d.addresses[DefaultFormType]; ok {
		return address
	}
	return d.fallback
}
