package origin

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	baselineStrategyMissingMessageConstant = "baseline strategy not configured"
	endpointStrategyMissingMessageConstant = "endpoint strategy not configured"
	baselinesFoundLogMessageConstant       = "Baselines located"
	logFieldStartRevisionConstant          = "start_revision"
	logFieldBaselineCountConstant          = "baseline_count"
)

// Construction sentinels.
var (
	// ErrBaselineStrategyMissing indicates the reader was built without a baseline strategy.
	ErrBaselineStrategyMissing = errors.New(baselineStrategyMissingMessageConstant)
	// ErrEndpointStrategyMissing indicates the reader was built without an endpoint strategy.
	ErrEndpointStrategyMissing = errors.New(endpointStrategyMissingMessageConstant)
)

// BaselineStrategy locates migration baselines reachable from a revision.
type BaselineStrategy interface {
	FindBaselinesWithoutLabel(executionContext context.Context, startRevision Revision, limit int) ([]Revision, error)
}

// EndpointStrategy produces feedback endpoints.
type EndpointStrategy interface {
	FeedbackEndpoint() (*FeedbackEndpoint, error)
}

// ReaderDependencies aggregates the strategies composed into a Reader.
type ReaderDependencies struct {
	Logger           *zap.Logger
	BaselineStrategy BaselineStrategy
	EndpointStrategy EndpointStrategy
}

// ReaderOptions configures reader behavior shared across operations.
type ReaderOptions struct {
	IncludeBranchCommitLogs bool
}

// Reader exposes baseline discovery and feedback endpoints for one origin.
//
// Behavior variations are injected as strategies rather than layered through
// embedding, so each collaborator stays independently testable.
type Reader struct {
	logger           *zap.Logger
	baselineStrategy BaselineStrategy
	endpointStrategy EndpointStrategy
	options          ReaderOptions
}

// NewReader validates dependencies and composes a Reader.
func NewReader(dependencies ReaderDependencies, options ReaderOptions) (*Reader, error) {
	if dependencies.BaselineStrategy == nil {
		return nil, ErrBaselineStrategyMissing
	}
	if dependencies.EndpointStrategy == nil {
		return nil, ErrEndpointStrategyMissing
	}

	readerLogger := dependencies.Logger
	if readerLogger == nil {
		readerLogger = zap.NewNop()
	}

	reader := &Reader{
		logger:           readerLogger,
		baselineStrategy: dependencies.BaselineStrategy,
		endpointStrategy: dependencies.EndpointStrategy,
		options:          options,
	}

	return reader, nil
}

// IncludesBranchCommitLogs reports whether downstream change listings should
// merge commit messages from non-first-parent branch commits.
func (reader *Reader) IncludesBranchCommitLogs() bool {
	return reader.options.IncludeBranchCommitLogs
}

// FindBaselinesWithoutLabel returns up to limit ancestor revisions of the
// starting revision whose commit messages lack the migration label. The
// starting revision is never included.
func (reader *Reader) FindBaselinesWithoutLabel(executionContext context.Context, startRevision Revision, limit int) ([]Revision, error) {
	baselineRevisions, findError := reader.baselineStrategy.FindBaselinesWithoutLabel(executionContext, startRevision, limit)
	if findError != nil {
		return nil, findError
	}

	reader.logger.Debug(
		baselinesFoundLogMessageConstant,
		zap.String(logFieldStartRevisionConstant, startRevision.SHA),
		zap.Int(logFieldBaselineCountConstant, len(baselineRevisions)),
	)

	return baselineRevisions, nil
}

// FeedbackEndpoint produces the feedback endpoint for this origin.
func (reader *Reader) FeedbackEndpoint() (*FeedbackEndpoint, error) {
	return reader.endpointStrategy.FeedbackEndpoint()
}
