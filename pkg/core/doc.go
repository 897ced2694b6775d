// Package core defines the shared language of the QueryForge backend.
//
// This package contains:
//   - Warehouse namespace types (TableRef, TableSelection, ColumnInfo)
//   - LLM model descriptors and token usage
//   - Audit events and the AuditStore contract
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
