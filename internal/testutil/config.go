package testutil

import "os"

const (
	// Test credential environment variables
	TestEbayClientID     = "TEST_EBAY_CLIENT_ID"
	TestEbayClientSecret = "TEST_EBAY_CLIENT_SECRET"

	// Default test values when environment variables are not set
	DefaultTestClientID = "test-client-id"
	DefaultTestSecret   = "test-client-secret"
)

// GetTestToken returns a test token from environment variable or default
func GetTestToken(envVar, defaultValue string) string {
	if token := os.Getenv(envVar); token != "" {
		return token
	}
	return defaultValue
}

// GetTestEbayClientID returns the client ID used against fake eBay servers
func GetTestEbayClientID() string {
	return GetTestToken(TestEbayClientID, DefaultTestClientID)
}

// GetTestEbayClientSecret returns the client secret used against fake eBay servers
func GetTestEbayClientSecret() string {
	return GetTestToken(TestEbayClientSecret, DefaultTestSecret)
}
