package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks a parameter that does not fit its description
var ErrValidation = errors.New("invalid node parameters")

// IsExpression reports whether a parameter value is an expression. Values
// starting with "=" are evaluated per item and cannot be validated upfront.
func IsExpression(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "=")
}

// Lookup returns the parameters of a known node or resource
func Lookup(name string) ([]Property, bool) {
	switch name {
	case SwitchNode.Name:
		return SwitchNode.Properties, true
	case "salesforce-user":
		return SalesforceUser(), true
	}
	return nil, false
}

// Visible reports whether p applies given the other parameter values.
// Conditions on unset parameters use their defaults.
func Visible(p Property, props []Property, params map[string]interface{}) bool {
	if p.DisplayOptions == nil {
		return true
	}

	for key, allowed := range p.DisplayOptions.Show {
		v, ok := value(key, props, params)
		if !ok || !contains(allowed, v) {
			return false
		}
	}
	for key, denied := range p.DisplayOptions.Hide {
		if v, ok := value(key, props, params); ok && contains(denied, v) {
			return false
		}
	}
	return true
}

// Default returns the default of the top-level parameter name as it applies
// to params. Several properties may share a name; the visible one wins.
func Default(props []Property, name string, params map[string]interface{}) (interface{}, bool) {
	for _, p := range props {
		if p.Name == name && Visible(p, props, params) {
			return p.Default, true
		}
	}
	return nil, false
}

// FillGroupDefaults completes each entry of a fixedCollection group with
// the defaults of the values it omits
func FillGroupDefaults(props []Property, collection, group string, params map[string]interface{}, entries []interface{}) []interface{} {
	values, ok := groupValues(props, collection, group, params)
	if !ok {
		return entries
	}

	out := make([]interface{}, len(entries))
	for i, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			out[i] = raw
			continue
		}

		filled := make(map[string]interface{}, len(values))
		for k, v := range entry {
			filled[k] = v
		}
		for _, vp := range values {
			if _, set := filled[vp.Name]; set {
				continue
			}
			if Visible(vp, values, filled) {
				filled[vp.Name] = vp.Default
			}
		}
		out[i] = filled
	}
	return out
}

// Omit returns a copy of props without the properties named names, at any
// depth of collections and fixedCollection groups
func Omit(props []Property, names ...string) []Property {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	return omit(props, drop)
}

func omit(props []Property, drop map[string]bool) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if drop[p.Name] {
			continue
		}
		if len(p.Fields) > 0 {
			p.Fields = omit(p.Fields, drop)
		}
		if len(p.Groups) > 0 {
			groups := make([]Group, len(p.Groups))
			for i, g := range p.Groups {
				g.Values = omit(g.Values, drop)
				groups[i] = g
			}
			p.Groups = groups
		}
		out = append(out, p)
	}
	return out
}

// Validate checks option membership, numeric bounds and required values of
// the visible parameters in params. Expressions are skipped.
func Validate(props []Property, params map[string]interface{}) error {
	var errs []error
	for _, p := range props {
		if !Visible(p, props, params) {
			continue
		}
		v, set := params[p.Name]
		if !set {
			if p.Required {
				errs = append(errs, fmt.Errorf("%s is required", p.Name))
			}
			continue
		}
		errs = append(errs, validateValue(p, p.Name, v)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}

func validateValue(p Property, path string, v interface{}) []error {
	if IsExpression(v) {
		return nil
	}

	switch p.Type {
	case TypeNumber:
		// scalar types are not enforced, only bounds of actual numbers
		n, ok := toFloat(v)
		if !ok {
			return nil
		}
		if p.TypeOptions != nil && p.TypeOptions.MinValue != nil && n < *p.TypeOptions.MinValue {
			return []error{fmt.Errorf("%s must be at least %v", path, *p.TypeOptions.MinValue)}
		}
		if p.TypeOptions != nil && p.TypeOptions.MaxValue != nil && n > *p.TypeOptions.MaxValue {
			return []error{fmt.Errorf("%s must be at most %v", path, *p.TypeOptions.MaxValue)}
		}
	case TypeOptionsList:
		allowed := make([]interface{}, len(p.Options))
		for i, o := range p.Options {
			allowed[i] = o.Value
		}
		if !contains(allowed, v) {
			return []error{fmt.Errorf("%s: %v is not one of the allowed options", path, v)}
		}
	case TypeCollection:
		m, ok := v.(map[string]interface{})
		if !ok {
			return []error{fmt.Errorf("%s must be an object", path)}
		}
		var errs []error
		for _, f := range p.Fields {
			if fv, set := m[f.Name]; set {
				errs = append(errs, validateValue(f, path+"."+f.Name, fv)...)
			}
		}
		return errs
	case TypeFixedCollection:
		return validateFixedCollection(p, path, v)
	}
	return nil
}

func validateFixedCollection(p Property, path string, v interface{}) []error {
	m, ok := v.(map[string]interface{})
	if !ok {
		return []error{fmt.Errorf("%s must be an object", path)}
	}

	var errs []error
	for _, g := range p.Groups {
		raw, set := m[g.Name]
		if !set {
			continue
		}
		entries, ok := raw.([]interface{})
		if !ok {
			if p.TypeOptions != nil && p.TypeOptions.MultipleValues {
				errs = append(errs, fmt.Errorf("%s.%s must be a list", path, g.Name))
				continue
			}
			entries = []interface{}{raw}
		}

		for i, e := range entries {
			entry, ok := e.(map[string]interface{})
			if !ok {
				errs = append(errs, fmt.Errorf("%s.%s[%d] must be an object", path, g.Name, i))
				continue
			}
			for _, vp := range g.Values {
				ev, set := entry[vp.Name]
				if !set || !Visible(vp, g.Values, entry) {
					continue
				}
				errs = append(errs, validateValue(vp, fmt.Sprintf("%s.%s[%d].%s", path, g.Name, i, vp.Name), ev)...)
			}
		}
	}
	return errs
}

func groupValues(props []Property, collection, group string, params map[string]interface{}) ([]Property, bool) {
	for _, p := range props {
		if p.Name != collection || p.Type != TypeFixedCollection || !Visible(p, props, params) {
			continue
		}
		for _, g := range p.Groups {
			if g.Name == group {
				return g.Values, true
			}
		}
	}
	return nil, false
}

// value returns params[key], or the default of the property named key
func value(key string, props []Property, params map[string]interface{}) (interface{}, bool) {
	if v, ok := params[key]; ok {
		return v, true
	}
	for _, p := range props {
		if p.Name == key && p.DisplayOptions == nil {
			return p.Default, true
		}
	}
	for _, p := range props {
		if p.Name == key {
			return p.Default, true
		}
	}
	return nil, false
}

func contains(list []interface{}, v interface{}) bool {
	for _, item := range list {
		if looseEqual(item, v) {
			return true
		}
	}
	return false
}

// looseEqual treats all numeric kinds as one domain
func looseEqual(a, b interface{}) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
