package origin

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gerritops/changeflow/internal/gitrepo"
)

// ClassificationKind tags the outcome of reference classification.
type ClassificationKind string

// Classification outcomes.
const (
	// ClassificationChange marks a reference that names a Gerrit change.
	ClassificationChange ClassificationKind = ClassificationKind("change")
	// ClassificationPlainReference marks a reference resolved directly against the repository.
	ClassificationPlainReference ClassificationKind = ClassificationKind("plain_reference")
)

const changeReferenceTemplateConstant = "refs/changes/%02d/%d/%d"

var (
	bareChangeNumberPattern     = regexp.MustCompile(`^([0-9]+)$`)
	numberWithPatchSetPattern   = regexp.MustCompile(`^([0-9]+)/([0-9]+)$`)
	changeReferencePattern      = regexp.MustCompile(`^refs/changes/[0-9]{2}/([0-9]+)/([0-9]+)$`)
	urlChangePathPattern        = regexp.MustCompile(`/(?:c/.+/\+|c|#/c)/([0-9]+)(?:/([0-9]+))?/?$`)
	fullCommitIdentifierPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// Classification is the tagged result of classifying a change reference.
//
// PatchSet is meaningful only for ClassificationChange and is zero when the
// reference did not pin a patch set.
type Classification struct {
	Kind         ClassificationKind
	ChangeNumber int64
	PatchSet     int
}

// PatchSetValue returns the pinned patch set number and whether the reference pinned one.
func (classification Classification) PatchSetValue() (int, bool) {
	return classification.PatchSet, classification.PatchSet > 0
}

// ClassifyReference decides whether a reference names a Gerrit change on the
// supplied repository or an ordinary git ref.
//
// Recognized change forms: a bare change number, "number/patchset", a full
// refs/changes ref, and change URLs on the repository's own host. URLs on a
// different host and every other string classify as plain references.
func ClassifyReference(reference string, repositoryURL gitrepo.RepositoryURL) Classification {
	trimmedReference := strings.TrimSpace(reference)

	if match := bareChangeNumberPattern.FindStringSubmatch(trimmedReference); match != nil {
		return changeClassification(match[1], "")
	}
	if match := numberWithPatchSetPattern.FindStringSubmatch(trimmedReference); match != nil {
		return changeClassification(match[1], match[2])
	}
	if match := changeReferencePattern.FindStringSubmatch(trimmedReference); match != nil {
		return changeClassification(match[1], match[2])
	}

	if strings.HasPrefix(trimmedReference, "http://") || strings.HasPrefix(trimmedReference, "https://") {
		parsedReference, parseError := gitrepo.ParseRepositoryURL(trimmedReference)
		if parseError == nil && parsedReference.Host == repositoryURL.Host {
			if match := urlChangePathPattern.FindStringSubmatch(trimmedReference); match != nil {
				return changeClassification(match[1], match[2])
			}
		}
	}

	return Classification{Kind: ClassificationPlainReference}
}

func changeClassification(changeNumberText string, patchSetText string) Classification {
	changeNumber, _ := strconv.ParseInt(changeNumberText, 10, 64)
	classification := Classification{Kind: ClassificationChange, ChangeNumber: changeNumber}
	if len(patchSetText) > 0 {
		patchSetNumber, _ := strconv.Atoi(patchSetText)
		classification.PatchSet = patchSetNumber
	}
	return classification
}
