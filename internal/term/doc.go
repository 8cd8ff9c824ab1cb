// Package term converts single delimited cells to typed values and back.
//
// # Overview
//
// A [Codec] describes one column of a data file: the term URI naming its
// meaning, its zero-based index, an optional default and an optional
// controlled vocabulary. Every codec is an interpreter over a [TypeTag]; the
// hundreds of Darwin Core terms are rows of a [Catalog], not types.
//
// # Encodings
//
//   - String, Integer, Float, Decimal, Boolean: direct conversion
//   - StringList: elements joined on " | "
//   - StringPair: two elements joined on "/"
//   - DateTime: first matching layout, most to least specific; encoding
//     picks the least specific layout that round-trips exactly
//   - DateTimeInterval: "start/end", each side a DateTime
//   - Vocabulary: case-insensitive match against a fixed value set
//
// An empty cell is never an error: it yields the codec default, or nil.
//
// # Registry
//
// A [Registry] is built once per archive from a catalog and then only read.
// Unknown URIs resolve to a pass-through String codec; callers are expected
// to warn about them.
package term
