// Package storage writes converted OCSF records to rotating, class-partitioned
// Parquet files.
//
// # Layout
//
// Each OCSF class gets its own Writer and its own directory:
//
//	<base>/<category>/<class>/<uuidv7>.parquet
//
// Category and class names come from pkg/ocsf; the directory layout matches
// this implementation's upstream so existing DuckDB glob queries
// (`SELECT * FROM './storage/iam/**/*.parquet'`) keep working unchanged.
//
// # Rotation
//
// A Writer holds its active parquet-go encoder behind an atomic.Pointer and
// swaps it out on a fixed ticker interval. Each encoder writes to a temp
// file in the OS temp directory, which rotation renames into the class
// directory once the writer closes cleanly, so the class directory only
// ever holds finished files. Empty files (zero rows written since the last
// rotation) are discarded rather than renamed. The rename is a plain
// os.Rename: when the OS temp directory is on a different filesystem from
// the storage base, rotation fails and the temp file is left in place.
//
// # Routing
//
// Backend is the routing table built once at startup from a pkg/schema
// directory walk: one Writer per resolved OCSF class, keyed by class_uid.
// Writing an event with an unrecognized or missing class_uid is a hard
// error, matching this implementation's upstream's refusal to silently drop
// events with schema mismatches.
package storage
