package origin

import (
	"context"
	"errors"
	"strings"

	"github.com/gerritops/changeflow/internal/gitrepo"
)

const (
	// MigrationOriginLabel is the commit-message trailer recording that a
	// commit was produced by a previous migration.
	MigrationOriginLabel = "ChangeFlow-RevId"

	trailerSeparatorConstant       = ": "
	finderRepositoryMissingMessage = "baseline finder requires repository operations"
)

// ErrBaselineRepositoryMissing indicates the baseline finder was built without repository operations.
var ErrBaselineRepositoryMissing = errors.New(finderRepositoryMissingMessage)

// BaselineVisitor collects ancestry commits lacking a commit-message label.
//
// The first visited commit is always discarded: baseline discovery starts from
// a revision that is itself being migrated, so it can never be its own
// baseline. Collection stops once the configured limit is reached; a limit of
// zero collects nothing.
type BaselineVisitor struct {
	labelName       string
	collectionLimit int
	firstVisited    bool
	collected       []Revision
}

// NewBaselineVisitor constructs a visitor that collects up to limit commits lacking the supplied label.
func NewBaselineVisitor(labelName string, limit int) *BaselineVisitor {
	return &BaselineVisitor{
		labelName:       labelName,
		collectionLimit: limit,
	}
}

// Visit inspects one ancestry commit and reports whether traversal should continue.
func (visitor *BaselineVisitor) Visit(record gitrepo.CommitRecord) (bool, error) {
	if !visitor.firstVisited {
		visitor.firstVisited = true
		return visitor.collectionLimit > 0, nil
	}

	if visitor.collectionLimit <= 0 {
		return false, nil
	}

	if !commitMessageCarriesLabel(record.Message, visitor.labelName) {
		visitor.collected = append(visitor.collected, NewRevision(record.SHA, record.SHA, NewLabelSet()))
	}

	return len(visitor.collected) < visitor.collectionLimit, nil
}

// Collected returns the collected baseline revisions in traversal order.
func (visitor *BaselineVisitor) Collected() []Revision {
	collectedCopy := make([]Revision, len(visitor.collected))
	copy(collectedCopy, visitor.collected)
	return collectedCopy
}

func commitMessageCarriesLabel(commitMessage string, labelName string) bool {
	trailerPrefix := labelName + trailerSeparatorConstant
	for _, messageLine := range strings.Split(commitMessage, "\n") {
		if strings.HasPrefix(strings.TrimSpace(messageLine), trailerPrefix) {
			return true
		}
	}
	return false
}

// BaselineFinder discovers migration baselines by walking first-parent ancestry.
type BaselineFinder struct {
	repository     RepositoryOperations
	repositoryPath string
	labelName      string
}

// NewBaselineFinder constructs a BaselineFinder for the supplied repository clone.
func NewBaselineFinder(repository RepositoryOperations, repositoryPath string, labelName string) (*BaselineFinder, error) {
	if repository == nil {
		return nil, ErrBaselineRepositoryMissing
	}
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return nil, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: emptyValueMessageConstant}
	}

	trimmedLabelName := strings.TrimSpace(labelName)
	if len(trimmedLabelName) == 0 {
		trimmedLabelName = MigrationOriginLabel
	}

	finder := &BaselineFinder{
		repository:     repository,
		repositoryPath: repositoryPath,
		labelName:      trimmedLabelName,
	}

	return finder, nil
}

// FindBaselinesWithoutLabel walks ancestry from the starting revision and
// returns up to limit commits whose messages lack the migration label. The
// starting revision itself is never returned.
func (finder *BaselineFinder) FindBaselinesWithoutLabel(executionContext context.Context, startRevision Revision, limit int) ([]Revision, error) {
	visitor := NewBaselineVisitor(finder.labelName, limit)

	walkError := finder.repository.WalkAncestry(executionContext, finder.repositoryPath, startRevision.SHA, visitor.Visit)
	if walkError != nil {
		return nil, CannotResolveRevisionError{Reference: startRevision.SHA, Cause: walkError}
	}

	return visitor.Collected(), nil
}
