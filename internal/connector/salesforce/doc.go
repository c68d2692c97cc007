// Package salesforce implements connector.Session on the Salesforce REST API.
//
// Sessions are opened with the OAuth 2.0 username-password flow. Every
// non-2xx response becomes a *connector.Error carrying the remote error
// code, so callers can match on it with errors.As.
package salesforce
