package schema

import "strconv"

// SwitchOutputs is the number of output lanes of the Switch node
const SwitchOutputs = 4

func laneOutput(outputs int, description string) Property {
	return Property{
		DisplayName: "Output",
		Name:        "output",
		Type:        TypeNumber,
		TypeOptions: &TypeOptions{MinValue: bound(0), MaxValue: bound(float64(outputs - 1))},
		Default:     0,
		Description: description,
	}
}

func rulesFor(outputs int, dataType, groupName string, operations []Option, defaultOperation string, value2 []Property) Property {
	values := []Property{
		{
			DisplayName: "Operation",
			Name:        "operation",
			Type:        TypeOptionsList,
			Options:     operations,
			Default:     defaultOperation,
			Description: "Operation to decide where the the data should be mapped to.",
		},
	}
	values = append(values, value2...)
	values = append(values, laneOutput(outputs, "The index of output to which to send data to if rule matches."))

	return Property{
		DisplayName:    "Routing Rules",
		Name:           "rules",
		Placeholder:    "Add Routing Rule",
		Type:           TypeFixedCollection,
		TypeOptions:    &TypeOptions{MultipleValues: true},
		DisplayOptions: show(map[string][]interface{}{"dataType": {dataType}, "mode": {"rules"}}),
		Description:    "The routing rules.",
		Default:        map[string]interface{}{},
		Groups: []Group{
			{Name: "rules", DisplayName: groupName, Values: values},
		},
	}
}

func value1For(dataType string, t PropertyType, def interface{}) Property {
	return Property{
		DisplayName:    "Value 1",
		Name:           "value1",
		Type:           t,
		DisplayOptions: show(map[string][]interface{}{"dataType": {dataType}, "mode": {"rules"}}),
		Default:        def,
		Description:    "The value to compare with the second one.",
	}
}

func value2(t PropertyType, def interface{}) Property {
	return Property{
		DisplayName: "Value 2",
		Name:        "value2",
		Type:        t,
		Default:     def,
		Description: "The value to compare with the first one.",
	}
}

// SwitchNode describes the Switch node with its four outputs
var SwitchNode = NewSwitchNode(SwitchOutputs)

// NewSwitchNode describes a Switch node with the given number of outputs,
// routed by expression or by rules over a boolean, number or string value
func NewSwitchNode(outputs int) NodeDescription {
	names := make([]string, outputs)
	ports := make([]string, outputs)
	fallback := []Option{{Name: "None", Value: -1}}
	for i := range names {
		names[i] = strconv.Itoa(i)
		ports[i] = "main"
		fallback = append(fallback, Option{Name: names[i], Value: i})
	}

	return NodeDescription{
		DisplayName: "Switch",
		Name:        "switch",
		Icon:        "fa:map-signs",
		Group:       []string{"transform"},
		Version:     1,
		Description: "Route items depending on defined expression or rules.",
		Defaults:    map[string]interface{}{"name": "Switch", "color": "#506000"},
		Inputs:      []string{"main"},
		Outputs:     ports,
		OutputNames: names,
		Properties: []Property{
			{
				DisplayName: "Mode",
				Name:        "mode",
				Type:        TypeOptionsList,
				Options: []Option{
					{Name: "Expression", Value: "expression", Description: "Expression decides how to route data."},
					{Name: "Rules", Value: "rules", Description: "Rules decide how to route data."},
				},
				Default:     "rules",
				Description: "How data should be routed.",
			},

			// mode:expression
			func() Property {
				p := laneOutput(outputs, "The index of output to which to send data to.")
				p.DisplayOptions = show(map[string][]interface{}{"mode": {"expression"}})
				return p
			}(),

			// mode:rules
			{
				DisplayName:    "Data Type",
				Name:           "dataType",
				Type:           TypeOptionsList,
				DisplayOptions: show(map[string][]interface{}{"mode": {"rules"}}),
				Options: []Option{
					{Name: "Boolean", Value: "boolean"},
					{Name: "Number", Value: "number"},
					{Name: "String", Value: "string"},
				},
				Default:     "number",
				Description: "The type of data to route on.",
			},

			value1For("boolean", TypeBoolean, false),
			rulesFor(outputs, "boolean", "Boolean",
				[]Option{
					{Name: "Equal", Value: "equal"},
					{Name: "Not Equal", Value: "notEqual"},
				},
				"equal",
				[]Property{value2(TypeBoolean, false)},
			),

			value1For("number", TypeNumber, 0),
			rulesFor(outputs, "number", "Numbers",
				[]Option{
					{Name: "Smaller", Value: "smaller"},
					{Name: "Smaller Equal", Value: "smallerEqual"},
					{Name: "Equal", Value: "equal"},
					{Name: "Not Equal", Value: "notEqual"},
					{Name: "Larger", Value: "larger"},
					{Name: "Larger Equal", Value: "largerEqual"},
				},
				"smaller",
				[]Property{value2(TypeNumber, 0)},
			),

			value1For("string", TypeString, ""),
			rulesFor(outputs, "string", "Strings",
				[]Option{
					{Name: "Contains", Value: "contains"},
					{Name: "Equal", Value: "equal"},
					{Name: "Not Contains", Value: "notContains"},
					{Name: "Not Equal", Value: "notEqual"},
					{Name: "Regex", Value: "regex"},
				},
				"equal",
				[]Property{
					func() Property {
						p := value2(TypeString, "")
						p.DisplayOptions = &DisplayOptions{Hide: map[string][]interface{}{"operation": {"regex"}}}
						return p
					}(),
					{
						DisplayName:    "Regex",
						Name:           "value2",
						Type:           TypeString,
						DisplayOptions: show(map[string][]interface{}{"operation": {"regex"}}),
						Default:        "",
						Placeholder:    "/text/i",
						Description:    "The regex which has to match.",
					},
				},
			),

			{
				DisplayName:    "Fallback Output",
				Name:           "fallbackOutput",
				Type:           TypeOptionsList,
				DisplayOptions: show(map[string][]interface{}{"mode": {"rules"}}),
				Options:        fallback,
				Default:        -1,
				Description:    "The output to which to route all items which do not match any of the rules.",
			},
		},
	}
}
