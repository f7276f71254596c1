// Package compat checks that a materialized schema version can replace its
// predecessor without breaking existing consumers.
//
// The comparison is a structural recursion over two decoded schema trees:
//
//   - node kinds (object, array, string, number, boolean, null) must match;
//   - for objects every key of the old schema is visited, keys present in both
//     are compared recursively and `required` lists may only grow;
//   - scalars must be equal;
//   - `$id`, `description` and `examples` may change freely.
//
// The first violation aborts the comparison and is returned as a
// schemaguard.Issues value holding a single issue.
package compat
