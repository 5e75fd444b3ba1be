// Package testutil provides shared constants for testing across reqbricks.
// These constants eliminate repeated string literals in test files and ensure consistency.
package testutil

// Test Error Messages
//
// These constants define common error messages used in test assertions.

const (
	// TestError is a generic error message for test error scenarios.
	TestError = "test error"

	// TestConnectionRefused is the common network error message for connection failures.
	TestConnectionRefused = "connection refused"
)

// Test Request Parameters
//
// These constants mirror the paste-service style request used throughout the
// translator and client tests.

const (
	// TestUserKeyParam is the declared name of the required user key parameter.
	TestUserKeyParam = "api_user_key"

	// TestUserKey is a populated value for TestUserKeyParam.
	TestUserKey = "swkj-22984"

	// TestLimitParam is the declared name of the optional limit parameter.
	TestLimitParam = "limit"

	// TestDeleteOnErrorParam is the declared name of the adapted boolean parameter.
	TestDeleteOnErrorParam = "delete_on_error"

	// TestTrueText is what the boolean text adapter produces for true.
	TestTrueText = "this is true"
)

// Test Host Configuration

const (
	// TestHost is the standard localhost hostname for test environments.
	TestHost = "localhost"

	// TestUnreachableURL points at a port nothing listens on.
	TestUnreachableURL = "http://127.0.0.1:1"
)
