// Package survey defines the booth survey data model shared by every other
// package: the persisted SurveyResponse record, the Draft handed over by the
// form, the per-device AppConfig and the error taxonomy.
//
// # Identity
//
// A response id is assigned once, by the Response Store, and never changes.
// Ids travel unchanged through export, import and merge; they are the only
// join key used for duplicate suppression between devices.
//
// # NPS
//
// NPS is an integer in [0,10]. The form uses -1 (NPSUnanswered) while the
// question is still open; that value is rejected by ValidateDraft and is
// never written by this device. Foreign records whose score is missing or
// unreadable are imported with NPSUnanswered and left out of score
// aggregates.
package survey
