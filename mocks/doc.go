// Package mocks provides testify mocks for the interfaces in internal/ports.
// Each constructor registers AssertExpectations with t.Cleanup.
package mocks
