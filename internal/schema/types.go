package schema

// PropertyType is the editor type of a node parameter
type PropertyType string

const (
	TypeString          PropertyType = "string"
	TypeNumber          PropertyType = "number"
	TypeBoolean         PropertyType = "boolean"
	TypeOptionsList     PropertyType = "options"
	TypeCollection      PropertyType = "collection"
	TypeFixedCollection PropertyType = "fixedCollection"
)

// Option is one choice of an options parameter
type Option struct {
	Name        string      `json:"name"`
	Value       interface{} `json:"value"`
	Description string      `json:"description,omitempty"`
}

// DisplayOptions decide when a parameter applies. A parameter is shown when
// every Show key holds one of its listed values and no Hide key does.
type DisplayOptions struct {
	Show map[string][]interface{} `json:"show,omitempty"`
	Hide map[string][]interface{} `json:"hide,omitempty"`
}

// TypeOptions constrain a parameter value
type TypeOptions struct {
	MinValue       *float64 `json:"minValue,omitempty"`
	MaxValue       *float64 `json:"maxValue,omitempty"`
	MultipleValues bool     `json:"multipleValues,omitempty"`
}

// Group is a named value set inside a fixedCollection parameter
type Group struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Values      []Property `json:"values"`
}

// Property describes one node parameter
type Property struct {
	DisplayName    string          `json:"displayName"`
	Name           string          `json:"name"`
	Type           PropertyType    `json:"type"`
	Default        interface{}     `json:"default"`
	Required       bool            `json:"required,omitempty"`
	Description    string          `json:"description,omitempty"`
	Placeholder    string          `json:"placeholder,omitempty"`
	Options        []Option        `json:"options,omitempty"`
	Fields         []Property      `json:"fields,omitempty"`
	Groups         []Group         `json:"groups,omitempty"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty"`
	TypeOptions    *TypeOptions    `json:"typeOptions,omitempty"`
}

// NodeDescription describes a node type and its parameters
type NodeDescription struct {
	DisplayName string                 `json:"displayName"`
	Name        string                 `json:"name"`
	Icon        string                 `json:"icon,omitempty"`
	Group       []string               `json:"group"`
	Version     int                    `json:"version"`
	Description string                 `json:"description"`
	Defaults    map[string]interface{} `json:"defaults"`
	Inputs      []string               `json:"inputs"`
	Outputs     []string               `json:"outputs"`
	OutputNames []string               `json:"outputNames,omitempty"`
	Properties  []Property             `json:"properties"`
}

func bound(v float64) *float64 {
	return &v
}

func show(conditions map[string][]interface{}) *DisplayOptions {
	return &DisplayOptions{Show: conditions}
}
