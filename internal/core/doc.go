// Package core provides the business logic for equipment dataset uploads.
//
// This package is the heart of the visualizer, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Table: a parsed CSV file ([ParseTable]) with typed optional cells.
//   - Summary: [Summarize] checks the required columns and derives the
//     count, the averages and the type distribution of one upload.
//   - Projection: [ProjectRaw] returns the first rows of a file for display.
//   - Service: the entry point for all dataset operations (create, list,
//     raw data, report, download, delete).
//
// # Upload Flow
//
//  1. Client calls [Service.CreateDataset] with the file bytes
//  2. The file is parsed (BOM stripped, invalid UTF-8 replaced)
//  3. Required columns are checked and statistics computed
//  4. The original bytes go to the [FileStore], the record to the [Repository]
//
// A rejected upload returns a [ValidationError] and persists nothing.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL002, VAL004: Validation errors (invalid numbers, missing columns)
//   - FILE001-FILE005: File errors (size, format, empty)
//   - DS001, RPT001: Dataset lookup and report errors
//   - AUTH001-AUTH003: Authentication errors
package core
