// Package rules implements StrIEM's detection rule collection: Sigma-style
// YAML rules loaded at startup, matched against streaming events, and
// toggled on or off at runtime through the management API without a
// restart.
//
// Matching supports the subset of the Sigma specification this project's
// upstream rule set actually exercises: named selections of field
// predicates (equality, |contains, |startswith, |endswith; any other
// modifier, |re included, is compared by plain equality) combined by a
// boolean condition expression (and, or, not, parentheses). It is not
// a full Sigma engine — pivot rules, aggregation (count/near), and
// correlation rules are out of scope, matching spec Non-goals around
// detection-engine completeness.
package rules
