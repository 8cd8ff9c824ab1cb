package dwca

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitStructuralError = 12 // Malformed descriptor or metadata document
	ExitCoercionError   = 13 // A cell could not be converted to its declared type
)

const (
	// DefaultMetaFile is the descriptor file name inside an archive.
	DefaultMetaFile = "meta.xml"

	// DefaultMetadataFile is the EML file name used when the descriptor
	// does not name one.
	DefaultMetadataFile = "eml.xml"

	// TextNamespace is the XML namespace of the meta.xml descriptor.
	TextNamespace = "http://rs.tdwg.org/dwc/text/"

	// EMLNamespace is the XML namespace of the EML root element.
	EMLNamespace = "https://eml.ecoinformatics.org/eml-2.2.0"

	// DefaultEncoding is the character encoding assumed when a data file
	// declares none.
	DefaultEncoding = "UTF-8"

	// ListSeparator joins the elements of multi-valued cells.
	ListSeparator = " | "

	// PairSeparator joins the two halves of pair cells and date intervals.
	PairSeparator = "/"

	// CoreIDColumn is the column name synthesized for an extension foreign key
	// that is not a declared field.
	CoreIDColumn = "coreid"

	// IDColumn is the column name synthesized for a core key that is not a
	// declared field.
	IDColumn = "id"
)
