// Package eval selects the expression language used for node parameters.
//
// Parameter expressions see three variables: json (the item's JSON object),
// itemIndex and itemCount.
package eval
