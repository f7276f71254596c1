// Package schemaguard holds the shared model of the schemaguard checks:
//
//   - SchemaVersion, one schema file of a repository (current or materialized)
//   - the Issue/Issues error model (code, JSON Pointer path, message,
//     expected and actual values)
//   - PathRef, a JSON Pointer builder used to locate issues
//   - node helpers for decoded schema trees (Kind, ScalarEqual, Properties)
//
// The checks live in subpackages: compat compares adjacent materialized
// versions, robustness lints single schemas, validator wraps the JSON Schema
// implementation, registry discovers schema files and suite declares and runs
// everything. cmd/schemaguard is the CLI.
//
// Typical usage from a Go test:
//
//	cfg, _ := registry.ReadConfig(nil)
//	reg := registry.New(cfg)
//	root, err := suite.DeclareCompatibility(reg)
//	if err != nil {
//		t.Fatal(err)
//	}
//	suite.RunT(t, root)
package schemaguard
