// Package validator provides rule-based input validation.
//
// Each rule pairs a check with the error reported when it fails. Apply runs
// every rule and returns all failures together as ValidationErrors, so a
// client can fix every field in one round trip.
//
//	err := validator.Apply(
//		validator.RequiredString("fullName", name),
//		validator.MaxLenString("fullName", name, 100),
//	)
//	if validator.IsValidationError(err) {
//		// 400
//	}
package validator
