package origin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gerritops/changeflow/internal/gerritapi"
)

const (
	reviewPosterMissingMessageConstant    = "review poster not configured"
	endpointRejectedMessageTemplateConst  = "feedback endpoint rejected for %s: %s"
	reviewPostedLogMessageConstant        = "Review posted"
	logFieldChangeIdentifierConstant      = "change"
	logFieldRevisionIdentifierConstant    = "revision"
	logFieldReviewLabelCountConstant      = "label_count"
)

// ErrReviewPosterMissing indicates the endpoint factory was built without a review poster.
var ErrReviewPosterMissing = errors.New(reviewPosterMissingMessageConstant)

// ReviewPoster posts reviews to Gerrit change revisions.
type ReviewPoster interface {
	SetReview(executionContext context.Context, changeIdentifier string, revisionIdentifier string, review gerritapi.ReviewInput) (gerritapi.ReviewResult, error)
}

// EndpointChecker validates that a repository URL may receive feedback.
type EndpointChecker interface {
	CheckURL(repositoryURL string) error
}

// EndpointRejectedError reports that the configured checker refused the repository URL.
type EndpointRejectedError struct {
	RepositoryURL string
	Cause         error
}

// Error describes the rejection.
func (rejectedError EndpointRejectedError) Error() string {
	return fmt.Sprintf(endpointRejectedMessageTemplateConst, rejectedError.RepositoryURL, rejectedError.Cause)
}

// Unwrap exposes the checker's error.
func (rejectedError EndpointRejectedError) Unwrap() error {
	return rejectedError.Cause
}

// FeedbackEndpoint posts migration feedback to changes on one Gerrit host.
type FeedbackEndpoint struct {
	poster        ReviewPoster
	repositoryURL string
	logger        *zap.Logger
}

// PostReview posts a review message and label votes to a change revision.
func (endpoint *FeedbackEndpoint) PostReview(executionContext context.Context, changeIdentifier string, revisionIdentifier string, review gerritapi.ReviewInput) (gerritapi.ReviewResult, error) {
	reviewResult, reviewError := endpoint.poster.SetReview(executionContext, changeIdentifier, revisionIdentifier, review)
	if reviewError != nil {
		return gerritapi.ReviewResult{}, reviewError
	}

	endpoint.logger.Debug(
		reviewPostedLogMessageConstant,
		zap.String(logFieldChangeIdentifierConstant, changeIdentifier),
		zap.String(logFieldRevisionIdentifierConstant, revisionIdentifier),
		zap.Int(logFieldReviewLabelCountConstant, len(reviewResult.Labels)),
	)

	return reviewResult, nil
}

// FeedbackEndpointFactory constructs feedback endpoints after optional URL validation.
//
// The checker is optional; when absent, endpoints are produced without
// validation.
type FeedbackEndpointFactory struct {
	poster        ReviewPoster
	repositoryURL string
	checker       EndpointChecker
	logger        *zap.Logger
}

// NewFeedbackEndpointFactory validates dependencies and constructs a factory.
func NewFeedbackEndpointFactory(poster ReviewPoster, repositoryURL string, checker EndpointChecker, logger *zap.Logger) (*FeedbackEndpointFactory, error) {
	if poster == nil {
		return nil, ErrReviewPosterMissing
	}

	trimmedRepositoryURL := strings.TrimSpace(repositoryURL)
	if len(trimmedRepositoryURL) == 0 {
		return nil, InvalidInputError{FieldName: repositoryURLFieldNameConstant, Message: emptyValueMessageConstant}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	factory := &FeedbackEndpointFactory{
		poster:        poster,
		repositoryURL: trimmedRepositoryURL,
		checker:       checker,
		logger:        logger,
	}

	return factory, nil
}

// FeedbackEndpoint produces an endpoint bound to the factory's repository,
// running the configured checker first when one is present.
func (factory *FeedbackEndpointFactory) FeedbackEndpoint() (*FeedbackEndpoint, error) {
	if factory.checker != nil {
		if checkError := factory.checker.CheckURL(factory.repositoryURL); checkError != nil {
			return nil, EndpointRejectedError{RepositoryURL: factory.repositoryURL, Cause: checkError}
		}
	}

	endpoint := &FeedbackEndpoint{
		poster:        factory.poster,
		repositoryURL: factory.repositoryURL,
		logger:        factory.logger,
	}

	return endpoint, nil
}
