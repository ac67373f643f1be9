// Package store keeps graph execution state in Redis and reads the input
// items of a Switch invocation from it.
//
// States are JSON documents under graph:state:<execution id>. Items are the
// output of the invocation's source node, or the state's top-level "items"
// list when no source node is given.
package store
