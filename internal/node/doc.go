// Package node runs Switch node invocations for the worker, the HTTP API
// and the command line.
package node
