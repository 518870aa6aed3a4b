package origin

// Label is a single provenance key/value annotation.
type Label struct {
	Key   string
	Value string
}

// LabelSet is an ordered, multi-valued label collection.
//
// Insertion order is preserved and duplicate keys are permitted; downstream
// tooling depends on label order for display and first-match semantics.
type LabelSet struct {
	entries []Label
}

// NewLabelSet constructs an empty label collection.
func NewLabelSet() LabelSet {
	return LabelSet{}
}

// Append adds a label entry, preserving insertion order.
func (labels *LabelSet) Append(key string, value string) {
	labels.entries = append(labels.entries, Label{Key: key, Value: value})
}

// Entries returns a copy of all label entries in insertion order.
func (labels LabelSet) Entries() []Label {
	duplicatedEntries := make([]Label, len(labels.entries))
	copy(duplicatedEntries, labels.entries)
	return duplicatedEntries
}

// Values returns all values recorded for the supplied key, in insertion order.
func (labels LabelSet) Values(key string) []string {
	var matchedValues []string
	for _, entry := range labels.entries {
		if entry.Key == key {
			matchedValues = append(matchedValues, entry.Value)
		}
	}
	return matchedValues
}

// First returns the first value recorded for the supplied key and whether one exists.
func (labels LabelSet) First(key string) (string, bool) {
	for _, entry := range labels.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Len reports the number of label entries.
func (labels LabelSet) Len() int {
	return len(labels.entries)
}

// Revision identifies a resolved point in version-control history.
//
// A Revision is returned to the caller and never mutated afterwards by this
// package; decoration helpers return copies.
type Revision struct {
	SHA             string
	Reference       string
	DescribeVersion string
	Labels          LabelSet
}

// NewRevision constructs a revision from a commit identifier, the reference it resolved from, and its labels.
func NewRevision(commitSHA string, reference string, labels LabelSet) Revision {
	return Revision{
		SHA:       commitSHA,
		Reference: reference,
		Labels:    labels,
	}
}

// WithDescribeVersion returns a copy of the revision decorated with a human-readable version description.
func (revision Revision) WithDescribeVersion(describeVersion string) Revision {
	decoratedRevision := revision
	decoratedRevision.DescribeVersion = describeVersion
	return decoratedRevision
}

// DescribeVersionValue returns the describe decoration and whether one is present.
func (revision Revision) DescribeVersionValue() (string, bool) {
	return revision.DescribeVersion, len(revision.DescribeVersion) > 0
}

// String renders the revision as its commit identifier.
func (revision Revision) String() string {
	return revision.SHA
}
