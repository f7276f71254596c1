// Package robustness implements the structural lint rules every schema of the
// repository must satisfy: snake_case property names, monomorphic types,
// required/properties consistency and self-consistent examples.
//
// Each rule walks the decoded schema depth-first and returns the first
// violation as a schemaguard.Issues value holding one issue whose Path is a
// URI fragment such as "#/properties/meta/properties/dt".
package robustness
