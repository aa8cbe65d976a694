// Package columnar converts decoded JSON records into the shape StrIEM's
// storage writer hands to parquet-go: a map[string]any whose structure
// mirrors a schema.Class field-by-field, with nulls, overflow, and
// stringification handled by the same per-field policy the original
// Arrow-based converter used, adapted to Parquet's native ability to
// represent "absent", "present but empty", and "present with value" at
// every nesting level without the column-shape bookkeeping Arrow arrays
// require.
package columnar
