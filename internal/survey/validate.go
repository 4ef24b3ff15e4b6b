package survey

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ValidateDraft checks the fields the store refuses to persist without.
//
// Optional fields (role, products, timestamp) are never a reason to reject.
func ValidateDraft(d Draft) error {
	if d.NPS == NPSUnanswered {
		return NewValidationError("nps", "nps is unanswered")
	}
	if d.NPS < NPSMin || d.NPS > NPSMax {
		return NewValidationError("nps", "nps must be between 0 and 10")
	}
	if strings.TrimSpace(d.FirstName) == "" {
		return NewValidationError("firstName", "first name is required")
	}
	if strings.TrimSpace(d.LastName) == "" {
		return NewValidationError("lastName", "last name is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return NewValidationError("email", "email is required")
	}
	return nil
}

// NormalizeDraft returns d with free-text fields in Unicode NFC so that the
// same name typed on two keyboards compares equal in reports.
func NormalizeDraft(d Draft) Draft {
	d.FirstName = norm.NFC.String(d.FirstName)
	d.LastName = norm.NFC.String(d.LastName)
	d.Email = norm.NFC.String(d.Email)
	d.Role = Role(norm.NFC.String(string(d.Role)))
	if d.SelectedProducts != nil {
		products := make([]string, len(d.SelectedProducts))
		for i, p := range d.SelectedProducts {
			products[i] = norm.NFC.String(p)
		}
		d.SelectedProducts = products
	}
	return d
}
