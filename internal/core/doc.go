// Package core provides the business logic for bulk sales imports.
//
// This package is the heart of the importer, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Pipeline
//
// A worksheet mixes partial, denormalized information about products,
// customers and sales. [Service.Import] turns it into create and update
// operations against a [Store]:
//
//  1. [ReadWorksheet] decodes xlsx or CSV bytes into rows of cells
//  2. [MapColumns] resolves the header row through the alias table
//  3. [ExtractRows] parses typed values and sets the per-domain flags
//  4. the entity cache is warmed with every existing category, product and customer
//  5. rows are reconciled one by one, in worksheet order
//  6. counters and row errors are aggregated into an [ImportResult]
//
// # Natural Keys
//
// Entities are matched by business keys, never by surrogate IDs: products by
// name, customers by email, categories by name. Keys are compared trimmed and
// lower-cased. Customers without an email get a synthesized placeholder so
// every stored customer still has a unique key.
//
// # Row Isolation
//
// Each row runs inside its own failure boundary. Errors are classified as
// validation, reference or system errors and recorded with the worksheet row
// number; the batch always continues with the next row. Writes a row made
// before it failed are kept.
//
// # Concurrency
//
// An import is single-threaded and holds no locks. Two imports running at
// the same time each build their own cache and can both create an entity
// with the same natural key.
//
// # Error Handling
//
// Batch-level failures are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors
//   - FILE001-FILE005: File errors (size, format, empty, unrecognized headers)
//   - IMP001-IMP006: Import errors (busy, expired result, unknown template)
package core
