// Package types contains the shared data contracts of the nanoswarm
// engine: the unified error model, chat message and tool-call wire types,
// and token/cost accounting.
//
// types is the lowest-level package in the module and must not import any
// other nanoswarm package.
package types
