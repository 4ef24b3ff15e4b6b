// Package kiosk models the two-step survey form shown on the booth tablet.
//
// The form moves Collecting -> Scoring -> Submitted and back to Collecting on
// Reset. It owns no storage; Submit hands a draft to a Saver.
package kiosk

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/boothsync/internal/survey"
)

// State is a form step.
type State int

const (
	// Collecting is step 1: identity and role.
	Collecting State = iota
	// Scoring is step 2: NPS, interest and products.
	Scoring
	// Submitted shows the thank-you screen until Reset.
	Submitted
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Scoring:
		return "scoring"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Saver persists a completed draft.
type Saver interface {
	SaveResponse(ctx context.Context, d survey.Draft) (survey.Response, error)
}

// TransitionError reports an action attempted in the wrong state.
type TransitionError struct {
	Action string
	State  State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("kiosk: cannot %s while %s", e.Action, e.State)
}

// Form is the state of one visitor's survey.
type Form struct {
	state State
	draft survey.Draft
}

// NewForm returns a blank form in Collecting.
func NewForm() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// State returns the current step.
func (f *Form) State() State { return f.state }

// Draft returns a copy of the answers entered so far.
func (f *Form) Draft() survey.Draft {
	d := f.draft
	d.SelectedProducts = append([]string{}, f.draft.SelectedProducts...)
	return d
}

// SetIdentity fills the step 1 fields.
func (f *Form) SetIdentity(firstName, lastName, email string, role survey.Role) error {
	if f.state != Collecting {
		return &TransitionError{Action: "edit identity", State: f.state}
	}
	f.draft.FirstName = firstName
	f.draft.LastName = lastName
	f.draft.Email = email
	if role != "" {
		f.draft.Role = role
	}
	return nil
}

// IdentityValid reports whether step 1 may be left.
func (f *Form) IdentityValid() bool {
	return identityError(f.draft) == nil
}

func identityError(d survey.Draft) error {
	if strings.TrimSpace(d.FirstName) == "" {
		return survey.NewValidationError("firstName", "first name is required")
	}
	if strings.TrimSpace(d.LastName) == "" {
		return survey.NewValidationError("lastName", "last name is required")
	}
	if !strings.Contains(d.Email, "@") {
		return survey.NewValidationError("email", "email must contain @")
	}
	return nil
}

// Next advances from Collecting to Scoring.
func (f *Form) Next() error {
	if f.state != Collecting {
		return &TransitionError{Action: "advance", State: f.state}
	}
	if err := identityError(f.draft); err != nil {
		return err
	}
	f.state = Scoring
	return nil
}

// Back returns from Scoring to Collecting, keeping every answer.
func (f *Form) Back() error {
	if f.state != Scoring {
		return &TransitionError{Action: "go back", State: f.state}
	}
	f.state = Collecting
	return nil
}

// SetNPS records the recommendation score.
func (f *Form) SetNPS(score int) error {
	if f.state != Scoring {
		return &TransitionError{Action: "score", State: f.state}
	}
	if score < survey.NPSMin || score > survey.NPSMax {
		return survey.NewValidationError("nps", "nps must be between 0 and 10")
	}
	f.draft.NPS = score
	return nil
}

// SetInterest records whether the visitor wants follow-up information.
// Turning interest off discards the product selection.
func (f *Form) SetInterest(interested bool) error {
	if f.state != Scoring {
		return &TransitionError{Action: "set interest", State: f.state}
	}
	f.draft.InterestedInInfo = interested
	if !interested {
		f.draft.SelectedProducts = []string{}
	}
	return nil
}

// ToggleProduct adds product to the selection, or removes it if present.
func (f *Form) ToggleProduct(product string) error {
	if f.state != Scoring {
		return &TransitionError{Action: "select products", State: f.state}
	}
	for i, p := range f.draft.SelectedProducts {
		if p == product {
			f.draft.SelectedProducts = append(f.draft.SelectedProducts[:i:i], f.draft.SelectedProducts[i+1:]...)
			return nil
		}
	}
	f.draft.SelectedProducts = append(f.draft.SelectedProducts, product)
	return nil
}

// ScoringValid reports whether step 2 may be submitted.
func (f *Form) ScoringValid() bool {
	return scoringError(f.draft) == nil
}

func scoringError(d survey.Draft) error {
	if d.NPS == survey.NPSUnanswered {
		return survey.NewValidationError("nps", "nps is unanswered")
	}
	if d.InterestedInInfo && len(d.SelectedProducts) == 0 {
		return survey.NewValidationError("selectedProducts", "select at least one product")
	}
	return nil
}

// Submit saves the draft through saver and moves to Submitted. On failure
// the form stays in Scoring with every answer intact.
func (f *Form) Submit(ctx context.Context, saver Saver) (survey.Response, error) {
	if f.state != Scoring {
		return survey.Response{}, &TransitionError{Action: "submit", State: f.state}
	}
	if err := scoringError(f.draft); err != nil {
		return survey.Response{}, err
	}

	d := f.Draft()
	if !d.InterestedInInfo {
		d.SelectedProducts = []string{}
	}
	r, err := saver.SaveResponse(ctx, d)
	if err != nil {
		return survey.Response{}, err
	}
	f.state = Submitted
	return r, nil
}

// Reset clears every answer and returns to Collecting. The role defaults
// to the first entry of survey.Roles.
func (f *Form) Reset() {
	f.state = Collecting
	f.draft = survey.Draft{
		Role:             survey.Roles[0],
		NPS:              survey.NPSUnanswered,
		SelectedProducts: []string{},
	}
}
