// Package errors provides the classified error primitives used across docsite.
//
// Every failure a documentation author can hit (missing site fields, a sidebar
// entry pointing at a document that does not exist, two pages claiming the same
// URL) is reported as a ClassifiedError so the CLI can print a focused diagnostic
// and pick a stable exit code.
//
// Key pieces:
//   - ErrorCategory: which input or stage failed (config, sidebar, routes, ...)
//   - ErrorSeverity: fatal, error, warning or info
//   - RetryStrategy: whether re-running can help (only filesystem and transport errors)
//   - ErrorBuilder: fluent construction with structured context
//   - CLI and HTTP adapters for presentation
//
// Example usage:
//
//	err := errors.SidebarError("sidebar references unknown document").
//		WithContext("sidebar", "tutorialSidebar").
//		WithContext("doc_id", "modules/payments").
//		Build()
package errors
