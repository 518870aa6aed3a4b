package gerritapi

import "strings"

// IncludeOption names an additional payload section requested from Gerrit.
type IncludeOption string

// Include options understood by the change endpoint.
const (
	IncludeDetailedAccounts IncludeOption = IncludeOption("DETAILED_ACCOUNTS")
	IncludeDetailedLabels   IncludeOption = IncludeOption("DETAILED_LABELS")
	IncludeCurrentRevision  IncludeOption = IncludeOption("CURRENT_REVISION")
)

// GetChangeInput configures a change metadata request.
type GetChangeInput struct {
	Options []IncludeOption
}

// AccountInfo describes a Gerrit account attached to a change.
type AccountInfo struct {
	AccountID int64  `json:"_account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// EmailAddress returns the account email and whether one is present.
func (account AccountInfo) EmailAddress() (string, bool) {
	trimmedEmail := strings.TrimSpace(account.Email)
	return trimmedEmail, len(trimmedEmail) > 0
}

// RevisionInfo describes one patch set of a change.
type RevisionInfo struct {
	Number    int    `json:"_number"`
	Reference string `json:"ref"`
}

// ChangeInfo describes a Gerrit change as returned by the change endpoint.
type ChangeInfo struct {
	ID              string                   `json:"id"`
	Project         string                   `json:"project"`
	Branch          string                   `json:"branch"`
	Topic           string                   `json:"topic"`
	ChangeID        string                   `json:"change_id"`
	Number          int64                    `json:"_number"`
	Status          string                   `json:"status"`
	Owner           AccountInfo              `json:"owner"`
	Reviewers       map[string][]AccountInfo `json:"reviewers"`
	CurrentRevision string                   `json:"current_revision"`
	Revisions       map[string]RevisionInfo  `json:"revisions"`
}

// TopicValue returns the change topic and whether one is present.
func (change ChangeInfo) TopicValue() (string, bool) {
	trimmedTopic := strings.TrimSpace(change.Topic)
	return trimmedTopic, len(trimmedTopic) > 0
}

// CurrentPatchSetNumber returns the patch set number of the current revision and whether it is known.
func (change ChangeInfo) CurrentPatchSetNumber() (int, bool) {
	currentRevision, revisionPresent := change.Revisions[change.CurrentRevision]
	if !revisionPresent {
		return 0, false
	}
	return currentRevision.Number, true
}

// ReviewInput describes a review posted back to a change revision.
type ReviewInput struct {
	Message string         `json:"message,omitempty"`
	Labels  map[string]int `json:"labels,omitempty"`
	Tag     string         `json:"tag,omitempty"`
}

// ReviewResult captures the label votes Gerrit applied for a posted review.
type ReviewResult struct {
	Labels map[string]int `json:"labels"`
}
