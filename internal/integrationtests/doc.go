// Package integrationtests drives the soqlgrid command line end to end
// against an in-process fake Salesforce org.
package integrationtests
