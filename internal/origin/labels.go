package origin

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gerritops/changeflow/internal/gerritapi"
)

// Label keys attached to revisions resolved from Gerrit changes.
const (
	GerritChangeBranchLabel     = "GERRIT_CHANGE_BRANCH"
	GerritChangeTopicLabel      = "GERRIT_CHANGE_TOPIC"
	GerritCompleteChangeIDLabel = "GERRIT_COMPLETE_CHANGE_ID"
	GerritOwnerEmailLabel       = "GERRIT_OWNER_EMAIL"
	GerritChangeNumberLabel     = "GERRIT_CHANGE_NUMBER"
	GerritPatchSetLabel         = "GERRIT_PATCH_SET"

	reviewerEmailLabelTemplateConstant = "GERRIT_%s_EMAIL"
)

// AssembleChangeLabels builds the ordered label collection for a Gerrit change.
//
// Labels are appended in a fixed order: change branch, topic when present,
// complete change identifier, one email label per reviewer with a known email,
// and the owner email when present. Reviewer roles are visited in sorted order
// so repeated assemblies of the same change yield identical label sequences;
// within a role, reviewer list order is preserved.
func AssembleChangeLabels(change gerritapi.ChangeInfo) LabelSet {
	labels := NewLabelSet()
	labels.Append(GerritChangeBranchLabel, change.Branch)

	if topic, topicPresent := change.TopicValue(); topicPresent {
		labels.Append(GerritChangeTopicLabel, topic)
	}

	labels.Append(GerritCompleteChangeIDLabel, change.ID)

	reviewerRoles := make([]string, 0, len(change.Reviewers))
	for reviewerRole := range change.Reviewers {
		reviewerRoles = append(reviewerRoles, reviewerRole)
	}
	sort.Strings(reviewerRoles)

	for _, reviewerRole := range reviewerRoles {
		roleLabelKey := fmt.Sprintf(reviewerEmailLabelTemplateConstant, reviewerRole)
		for _, reviewerAccount := range change.Reviewers[reviewerRole] {
			if reviewerEmail, emailPresent := reviewerAccount.EmailAddress(); emailPresent {
				labels.Append(roleLabelKey, reviewerEmail)
			}
		}
	}

	if ownerEmail, ownerEmailPresent := change.Owner.EmailAddress(); ownerEmailPresent {
		labels.Append(GerritOwnerEmailLabel, ownerEmail)
	}

	return labels
}

func appendChangeIdentityLabels(labels LabelSet, changeNumber int64, patchSetNumber int) LabelSet {
	labels.Append(GerritChangeNumberLabel, strconv.FormatInt(changeNumber, 10))
	labels.Append(GerritPatchSetLabel, strconv.Itoa(patchSetNumber))
	return labels
}
