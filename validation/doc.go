// Package validation provides input validation for flow options and payloads.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for configuration and request payloads; programmatic validation for
// run options assembled at call sites.
//
// # Struct Tag Validation
//
//	type TaskPayload struct {
//	    Title  string `json:"title" validate:"required,max=255"`
//	    Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
//	}
//	err := validation.Validate(payload)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OptionalUUID("project_id", opts.ProjectID)
//	v.OneOf("scope", opts.Scope, []string{"full", "quick"})
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
