// Package table implements the row tables of an archive: one data file
// described by a dialect and an ordered list of term codecs.
//
// A table holds either a materialized row set or a lazy handle over a
// temporary copy of its data file. Lazy tables stream rows on demand and must
// be released with Close on every exit path.
//
// Key operations:
//   - New: build a table from a Descriptor, resolving terms through a registry
//   - Read / ReadLazy: load a data file eagerly or lazily
//   - Write: encode the table back to its dialect
//   - AddField, Merge, Filter, KeepKeys: reshape rows
//   - SQLSchema, SQLInsert, SQLRows: relational projection
package table
