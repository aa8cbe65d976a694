// Package schema parses the textual, Parquet message-type-like schema
// files that describe each OCSF class StrIEM writes to disk, e.g.:
//
//	message api_activity {
//	    optional INT32 activity_id (INTEGER(32, true));
//	    optional BYTE_ARRAY activity_name (STRING);
//	    optional group actor {
//	        optional BYTE_ARRAY app_name (STRING);
//	    }
//	    optional group authorizations (LIST) {
//	        repeated group list {
//	            optional BYTE_ARRAY decision (STRING);
//	            optional BOOLEAN is_applied;
//	        }
//	    }
//	}
//
// Schemas are loaded once at startup by walking the configured schema
// directory; there is no hot-reload path. Config reload does not touch the
// storage writers either: each storage.Writer keeps the output directory it
// was created with for the life of the process.
package schema
