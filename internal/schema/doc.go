// Package schema holds the parameter descriptions of the Switch node and of
// the Salesforce user resource, and applies them: parameter visibility,
// defaults and validation.
package schema
