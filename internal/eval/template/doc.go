// Package template renders Handlebars templates embedded in string node
// parameters, with the item's JSON as the template context.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{"customer": "acme", "tier": "gold"}
//	out, err := engine.Render("{{uppercase tier}}-{{customer}}", data)
//	// out == "GOLD-acme"
//
// Built-in helpers:
//   - uppercase, lowercase, trim
//   - default - Return default value if first arg is empty
//   - join - Join array elements with separator
package template
