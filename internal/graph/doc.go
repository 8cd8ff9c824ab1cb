// Package graph provides the node type shared by the archive descriptor and
// the EML document. A node is either a definition carrying content or a
// pointer to a node defined elsewhere, never both.
//
// The package only decodes and encodes nodes. It never follows a pointer;
// callers that need the referenced content build an Index from the defined
// nodes and look it up themselves, so decoded graphs stay acyclic.
package graph
