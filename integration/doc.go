// Package integration contains the end-to-end smoke test for the warden
// CLI. See smoke_test.go for the mock-agent design.
package integration
