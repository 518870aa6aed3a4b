// Package origin resolves Gerrit change references and plain git refs into
// immutable, label-annotated revisions for the change-migration pipeline.
//
// It exposes Resolver for dual-path reference resolution, Reader for baseline
// discovery and feedback endpoint construction, the ordered label collection
// attached to resolved revisions, and the typed outcomes (empty change,
// unresolvable revision) callers are expected to distinguish.
package origin
