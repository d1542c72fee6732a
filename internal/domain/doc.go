// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/blog, domain/user,
// domain/category, domain/author). This root package holds sentinel errors,
// the error taxonomy for the document store, and the Action interface used by
// the unit of work.
package domain
