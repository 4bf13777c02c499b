// Package models defines the core domain models for NatiApp.
//
// # Entities
//
//   - Natillera: a savings group with a fixed quota, periodicity and duration
//   - Membership: links a user to a natillera with a role (admin or member)
//   - Contribution: one payment report for a quota month, reviewed by the admin
//   - User: a registered account (identity collaborator)
//
// # Conventions
//
// Relationships are expressed with ID strings, never pointers. Amounts are
// whole Colombian pesos stored as int64; the currency has no fractional unit
// in practice. Timestamps are time.Time in UTC; optional timestamps are
// pointers.
//
// Validation that does not need the store lives next to each model
// (Validate methods) so that services can reject bad input before any
// backend call.
package models
