// Package core provides the backend business logic for batch (lote) registration.
//
// This package is independent of any UI or transport layer. It is used by the
// web handlers and by the form sessions through small adapters.
//
// # Architecture
//
//   - Category Registry: each lookup category (status, tipos, produtos,
//     fornecedores, unidades, classificacoes, locaisArmazenamento) is
//     registered with a list function and an existence check.
//   - Service: the entry point for loading option catalogs, creating
//     products and registering batches.
//   - Rules: cross-field batch rules compiled with expr.
//   - WriteLimiter: bounds concurrent writes and drains on shutdown.
//
// # Category Registry
//
// Categories are registered at init time using [Register]:
//
//	core.Register(core.CategoryDefinition{
//	    Info:   core.CategoryInfo{Key: "tipos", Label: "Tipo", Order: 20, Bundled: true},
//	    List:   listTipos,
//	    Exists: tipoExists,
//	})
//
// # Bundled Options
//
// [Service.LoadOptions] reads every bundled category inside one read-only,
// repeatable-read transaction, so a client either receives a consistent
// snapshot of all categories or an error.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a code for support reference:
//
//   - DB001-DB008: database errors (duplicates, references, connections)
//   - VAL001-VAL007: batch validation errors
//   - PRD001-PRD002: product creation errors
//   - OPT001: unknown option category
//   - REQ001-REQ003: request cancellation, timeouts, busy system
package core
