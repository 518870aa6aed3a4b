package origin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gerritops/changeflow/internal/gerritapi"
	"github.com/gerritops/changeflow/internal/gitrepo"
)

const (
	referenceFieldNameConstant            = "reference"
	repositoryPathFieldNameConstant       = "repository_path"
	repositoryURLFieldNameConstant        = "repository_url"
	emptyValueMessageConstant             = "value must not be empty"
	repositoryMissingMessageConstant      = "repository operations not configured"
	gerritMissingMessageConstant          = "gerrit change fetcher not configured"
	patchSetUnknownMessageTemplateConst   = "change %d has no known current patch set"
	resolvingLogMessageConstant           = "Resolving change reference"
	resolvedLogMessageConstant            = "Resolved change reference"
	changeFetchedLogMessageConstant       = "Fetched change patch set"
	describeSkippedLogMessageConstant     = "Describe decoration unavailable, returning undecorated revision"
	logFieldResolutionIdentifierConstant  = "resolution_id"
	logFieldReferenceConstant             = "reference"
	logFieldClassificationConstant        = "classification"
	logFieldRevisionConstant              = "revision"
	logFieldChangeNumberConstant          = "change_number"
	logFieldPatchSetConstant              = "patch_set"
	gerritSchemeHostTemplateConstant      = "%s://%s"
)

// Construction sentinels.
var (
	// ErrRepositoryOperationsMissing indicates the resolver was built without repository operations.
	ErrRepositoryOperationsMissing = errors.New(repositoryMissingMessageConstant)
	// ErrChangeFetcherMissing indicates the resolver was built without a Gerrit change fetcher.
	ErrChangeFetcherMissing = errors.New(gerritMissingMessageConstant)
)

// RepositoryOperations captures the git operations resolution depends on.
type RepositoryOperations interface {
	FetchReference(executionContext context.Context, repositoryPath string, remoteURL string, reference string) (string, error)
	ResolveRevision(executionContext context.Context, repositoryPath string, reference string) (string, error)
	DescribeCommit(executionContext context.Context, repositoryPath string, commitSHA string) (string, error)
	WalkAncestry(executionContext context.Context, repositoryPath string, startRevision string, visit gitrepo.AncestryVisit) error
}

// ChangeFetcher retrieves change metadata from Gerrit.
type ChangeFetcher interface {
	GetChange(executionContext context.Context, changeIdentifier string, input gerritapi.GetChangeInput) (gerritapi.ChangeInfo, error)
}

// ResolverDependencies aggregates the collaborators required by Resolver.
type ResolverDependencies struct {
	Logger     *zap.Logger
	Repository RepositoryOperations
	Gerrit     ChangeFetcher
}

// ResolverOptions configures a Resolver for one origin repository.
//
// TargetBranch is optional; when empty, changes on any branch resolve. When
// set, changes on other branches resolve to an EmptyChangeError.
type ResolverOptions struct {
	RepositoryPath  string
	RepositoryURL   string
	TargetBranch    string
	DescribeVersion bool
}

// Resolver turns change references and plain git refs into resolved revisions.
type Resolver struct {
	logger        *zap.Logger
	repository    RepositoryOperations
	gerrit        ChangeFetcher
	options       ResolverOptions
	repositoryURL gitrepo.RepositoryURL
}

// NewResolver validates dependencies and constructs a Resolver.
func NewResolver(dependencies ResolverDependencies, options ResolverOptions) (*Resolver, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryOperationsMissing
	}
	if dependencies.Gerrit == nil {
		return nil, ErrChangeFetcherMissing
	}
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return nil, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: emptyValueMessageConstant}
	}

	parsedRepositoryURL, parseError := gitrepo.ParseRepositoryURL(options.RepositoryURL)
	if parseError != nil {
		return nil, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: parseError.Error()}
	}

	resolverLogger := dependencies.Logger
	if resolverLogger == nil {
		resolverLogger = zap.NewNop()
	}

	resolver := &Resolver{
		logger:        resolverLogger,
		repository:    dependencies.Repository,
		gerrit:        dependencies.Gerrit,
		options:       options,
		repositoryURL: parsedRepositoryURL,
	}

	return resolver, nil
}

// Resolve resolves a reference into a revision.
//
// References naming a Gerrit change are resolved through change metadata and
// the change's refs/changes ref; every other reference resolves directly
// against the repository. Changes outside the configured target branch yield
// an EmptyChangeError and no revision.
func (resolver *Resolver) Resolve(executionContext context.Context, reference string) (Revision, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return Revision{}, InvalidInputError{FieldName: referenceFieldNameConstant, Message: emptyValueMessageConstant}
	}

	resolutionIdentifier := uuid.NewString()
	classification := ClassifyReference(trimmedReference, resolver.repositoryURL)
	resolver.logger.Debug(
		resolvingLogMessageConstant,
		zap.String(logFieldResolutionIdentifierConstant, resolutionIdentifier),
		zap.String(logFieldReferenceConstant, trimmedReference),
		zap.String(logFieldClassificationConstant, string(classification.Kind)),
	)

	var resolvedRevision Revision
	var resolutionError error
	switch classification.Kind {
	case ClassificationChange:
		resolvedRevision, resolutionError = resolver.resolveChange(executionContext, classification)
	default:
		resolvedRevision, resolutionError = resolver.resolvePlainReference(executionContext, trimmedReference)
	}
	if resolutionError != nil {
		return Revision{}, resolutionError
	}

	resolvedRevision = resolver.decorateWithDescribe(executionContext, resolvedRevision)

	resolver.logger.Debug(
		resolvedLogMessageConstant,
		zap.String(logFieldResolutionIdentifierConstant, resolutionIdentifier),
		zap.String(logFieldRevisionConstant, resolvedRevision.SHA),
	)

	return resolvedRevision, nil
}

func (resolver *Resolver) resolveChange(executionContext context.Context, classification Classification) (Revision, error) {
	changeInfo, fetchError := resolver.gerrit.GetChange(executionContext, strconv.FormatInt(classification.ChangeNumber, 10), gerritapi.GetChangeInput{
		Options: []gerritapi.IncludeOption{
			gerritapi.IncludeDetailedAccounts,
			gerritapi.IncludeDetailedLabels,
			gerritapi.IncludeCurrentRevision,
		},
	})
	if fetchError != nil {
		return Revision{}, fetchError
	}

	if len(resolver.options.TargetBranch) > 0 && changeInfo.Branch != resolver.options.TargetBranch {
		return Revision{}, EmptyChangeError{
			ChangeNumber: changeInfo.Number,
			ChangeBranch: changeInfo.Branch,
			TargetBranch: resolver.options.TargetBranch,
		}
	}

	patchSetNumber, patchSetPinned := classification.PatchSetValue()
	if !patchSetPinned {
		currentPatchSet, patchSetKnown := changeInfo.CurrentPatchSetNumber()
		if !patchSetKnown {
			return Revision{}, CannotResolveRevisionError{
				Reference: strconv.FormatInt(classification.ChangeNumber, 10),
				Cause:     fmt.Errorf(patchSetUnknownMessageTemplateConst, classification.ChangeNumber),
			}
		}
		patchSetNumber = currentPatchSet
	}

	changeReference := fmt.Sprintf(changeReferenceTemplateConstant, classification.ChangeNumber%100, classification.ChangeNumber, patchSetNumber)
	fetchedSHA, referenceFetchError := resolver.repository.FetchReference(executionContext, resolver.options.RepositoryPath, resolver.options.RepositoryURL, changeReference)
	if referenceFetchError != nil {
		return Revision{}, CannotResolveRevisionError{Reference: changeReference, Cause: referenceFetchError}
	}

	changeLabels := AssembleChangeLabels(changeInfo)
	changeLabels = appendChangeIdentityLabels(changeLabels, classification.ChangeNumber, patchSetNumber)

	resolver.logger.Debug(
		changeFetchedLogMessageConstant,
		zap.Int64(logFieldChangeNumberConstant, classification.ChangeNumber),
		zap.Int(logFieldPatchSetConstant, patchSetNumber),
	)

	return NewRevision(fetchedSHA, changeReference, changeLabels), nil
}

func (resolver *Resolver) resolvePlainReference(executionContext context.Context, reference string) (Revision, error) {
	if fullCommitIdentifierPattern.MatchString(reference) {
		resolvedSHA, resolveError := resolver.repository.ResolveRevision(executionContext, resolver.options.RepositoryPath, reference)
		if resolveError != nil {
			return Revision{}, CannotResolveRevisionError{Reference: reference, Cause: resolveError}
		}
		return NewRevision(resolvedSHA, reference, NewLabelSet()), nil
	}

	fetchedSHA, fetchError := resolver.repository.FetchReference(executionContext, resolver.options.RepositoryPath, resolver.options.RepositoryURL, reference)
	if fetchError != nil {
		return Revision{}, CannotResolveRevisionError{Reference: reference, Cause: fetchError}
	}

	return NewRevision(fetchedSHA, reference, NewLabelSet()), nil
}

// decorateWithDescribe attaches a describe decoration when enabled. Describe
// failures degrade to the undecorated revision.
func (resolver *Resolver) decorateWithDescribe(executionContext context.Context, revision Revision) Revision {
	if !resolver.options.DescribeVersion {
		return revision
	}

	describeOutput, describeError := resolver.repository.DescribeCommit(executionContext, resolver.options.RepositoryPath, revision.SHA)
	if describeError != nil {
		resolver.logger.Debug(
			describeSkippedLogMessageConstant,
			zap.String(logFieldRevisionConstant, revision.SHA),
			zap.Error(describeError),
		)
		return revision
	}

	return revision.WithDescribeVersion(describeOutput)
}

// GerritBaseURL derives the Gerrit REST base URL from a repository URL.
// SSH repository URLs map to the HTTPS REST endpoint on the same host.
func GerritBaseURL(repositoryURL gitrepo.RepositoryURL) string {
	scheme := repositoryURL.Scheme
	if scheme != gitrepo.RepositoryURLSchemeHTTP {
		scheme = gitrepo.RepositoryURLSchemeHTTPS
	}
	return fmt.Sprintf(gerritSchemeHostTemplateConstant, string(scheme), repositoryURL.Host)
}
