// Package teardown sequences the annotation pipeline: OCR extraction,
// line grouping, verdict generation, evidence selection, rendering and
// the playbook, per content item.
//
// A batch run executes items with bounded parallelism and records
// per-item failures without stopping the run. Stage errors keep their
// package-level types (ocr.InputError, editorial.QualityError and so
// on) so callers can distinguish bad input from exhausted generation
// budgets.
package teardown
