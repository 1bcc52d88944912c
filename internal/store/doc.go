// Package store persists uploads: the original and cropped images in a
// filesystem object store and one metadata row per upload in SQLite.
//
// # Layout
//
// Everything lives below a single data directory:
//
//	<data dir>/
//	  uploads/original/<filename>
//	  uploads/cropped/<name>.cropped.png
//	  doc-scanner.db
//
// Object keys are the slash-separated paths relative to the data
// directory, the same keys an S3-style store would use.
package store
