// Package policy evaluates CRM authorization decisions.
//
// Every function in this package is a pure function of its arguments: the
// user snapshot, the team index and the capability. Nothing here performs I/O
// or holds mutable state, so an Evaluator can be shared freely between
// goroutines. Missing or malformed input always yields a denial.
package policy
