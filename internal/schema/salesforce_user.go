package schema

var userResource = map[string][]interface{}{"resource": {"user"}}

func userShow(operation string, extra map[string][]interface{}) *DisplayOptions {
	conditions := map[string][]interface{}{
		"resource":  {"user"},
		"operation": {operation},
	}
	for k, v := range extra {
		conditions[k] = v
	}
	return show(conditions)
}

// SalesforceUserOperations lists the operations of the Salesforce user resource
var SalesforceUserOperations = []Property{
	{
		DisplayName: "Resource",
		Name:        "resource",
		Type:        TypeOptionsList,
		Options: []Option{
			{Name: "User", Value: "user", Description: "Represents a person, which is one user in system."},
		},
		Default:     "user",
		Description: "Resource to consume.",
	},
	{
		DisplayName:    "Operation",
		Name:           "operation",
		Type:           TypeOptionsList,
		DisplayOptions: show(userResource),
		Options: []Option{
			{Name: "Get", Value: "get", Description: "Get a user"},
			{Name: "Get All", Value: "getAll", Description: "Get all users"},
		},
		Default:     "get",
		Description: "The operation to perform.",
	},
}

// SalesforceUserFields lists the fields of the Salesforce user operations
var SalesforceUserFields = []Property{
	// user:get
	{
		DisplayName:    "User ID",
		Name:           "userId",
		Type:           TypeString,
		Required:       true,
		Default:        "",
		DisplayOptions: userShow("get", nil),
		Description:    "Id of user that needs to be fetched",
	},

	// user:getAll
	{
		DisplayName:    "Return All",
		Name:           "returnAll",
		Type:           TypeBoolean,
		DisplayOptions: userShow("getAll", nil),
		Default:        false,
		Description:    "If all results should be returned or only up to a given limit.",
	},
	{
		DisplayName:    "Limit",
		Name:           "limit",
		Type:           TypeNumber,
		DisplayOptions: userShow("getAll", map[string][]interface{}{"returnAll": {false}}),
		TypeOptions:    &TypeOptions{MinValue: bound(1), MaxValue: bound(100)},
		Default:        50,
		Description:    "How many results to return.",
	},
	{
		DisplayName:    "Options",
		Name:           "options",
		Type:           TypeCollection,
		Placeholder:    "Add Field",
		Default:        map[string]interface{}{},
		DisplayOptions: userShow("getAll", nil),
		Fields: []Property{
			{
				DisplayName: "Fields",
				Name:        "fields",
				Type:        TypeString,
				Default:     "",
				Description: "Fields to include separated by ,",
			},
		},
	},
}

// SalesforceUser returns the operations and fields of the user resource
func SalesforceUser() []Property {
	props := make([]Property, 0, len(SalesforceUserOperations)+len(SalesforceUserFields))
	props = append(props, SalesforceUserOperations...)
	return append(props, SalesforceUserFields...)
}
