// Package util provides small generic helpers shared across flowcheck.
//
// It includes pointer helpers, map key extraction, and slice operations
// used by the flow engine and report aggregation.
package util
