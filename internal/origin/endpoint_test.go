package origin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gerritops/changeflow/internal/gerritapi"
	"github.com/gerritops/changeflow/internal/origin"
)

type recordingReviewPoster struct {
	reviewError        error
	postedChange       string
	postedRevision     string
	postedReview       gerritapi.ReviewInput
	reviewResultLabels map[string]int
}

func (poster *recordingReviewPoster) SetReview(executionContext context.Context, changeIdentifier string, revisionIdentifier string, review gerritapi.ReviewInput) (gerritapi.ReviewResult, error) {
	poster.postedChange = changeIdentifier
	poster.postedRevision = revisionIdentifier
	poster.postedReview = review
	if poster.reviewError != nil {
		return gerritapi.ReviewResult{}, poster.reviewError
	}
	return gerritapi.ReviewResult{Labels: poster.reviewResultLabels}, nil
}

type stubEndpointChecker struct {
	checkError error
	checkedURL string
}

func (checker *stubEndpointChecker) CheckURL(repositoryURL string) error {
	checker.checkedURL = repositoryURL
	return checker.checkError
}

func TestNewFeedbackEndpointFactoryValidation(testInstance *testing.T) {
	factory, creationError := origin.NewFeedbackEndpointFactory(nil, testRepositoryURLConstant, nil, zap.NewNop())
	require.Nil(testInstance, factory)
	require.ErrorIs(testInstance, creationError, origin.ErrReviewPosterMissing)

	_, missingURLError := origin.NewFeedbackEndpointFactory(&recordingReviewPoster{}, " ", nil, zap.NewNop())
	var inputError origin.InvalidInputError
	require.ErrorAs(testInstance, missingURLError, &inputError)
}

func TestFeedbackEndpointWithoutCheckerSucceeds(testInstance *testing.T) {
	factory, creationError := origin.NewFeedbackEndpointFactory(&recordingReviewPoster{}, testRepositoryURLConstant, nil, zap.NewNop())
	require.NoError(testInstance, creationError)

	endpoint, endpointError := factory.FeedbackEndpoint()
	require.NoError(testInstance, endpointError)
	require.NotNil(testInstance, endpoint)
}

func TestFeedbackEndpointCheckerOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name           string
		checkError     error
		expectRejected bool
	}{
		{
			name: "checker_accepts",
		},
		{
			name:           "checker_rejects",
			checkError:     errors.New("host not allowed"),
			expectRejected: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			checker := &stubEndpointChecker{checkError: testCase.checkError}
			factory, creationError := origin.NewFeedbackEndpointFactory(&recordingReviewPoster{}, testRepositoryURLConstant, checker, zap.NewNop())
			require.NoError(testInstance, creationError)

			endpoint, endpointError := factory.FeedbackEndpoint()
			require.Equal(testInstance, testRepositoryURLConstant, checker.checkedURL)

			if testCase.expectRejected {
				require.Nil(testInstance, endpoint)
				var rejectedError origin.EndpointRejectedError
				require.ErrorAs(testInstance, endpointError, &rejectedError)
				require.Equal(testInstance, testRepositoryURLConstant, rejectedError.RepositoryURL)
				return
			}

			require.NoError(testInstance, endpointError)
			require.NotNil(testInstance, endpoint)
		})
	}
}

func TestPostReviewDelegatesToPoster(testInstance *testing.T) {
	poster := &recordingReviewPoster{reviewResultLabels: map[string]int{"Code-Review": 1}}
	factory, creationError := origin.NewFeedbackEndpointFactory(poster, testRepositoryURLConstant, nil, zap.NewNop())
	require.NoError(testInstance, creationError)

	endpoint, endpointError := factory.FeedbackEndpoint()
	require.NoError(testInstance, endpointError)

	reviewResult, reviewError := endpoint.PostReview(context.Background(), "3947", "abc123", gerritapi.ReviewInput{
		Message: "Migration completed",
		Labels:  map[string]int{"Code-Review": 1},
	})
	require.NoError(testInstance, reviewError)
	require.Equal(testInstance, "3947", poster.postedChange)
	require.Equal(testInstance, "abc123", poster.postedRevision)
	require.Equal(testInstance, "Migration completed", poster.postedReview.Message)
	require.Equal(testInstance, map[string]int{"Code-Review": 1}, reviewResult.Labels)
}

func TestPostReviewSurfacesPosterFailures(testInstance *testing.T) {
	poster := &recordingReviewPoster{reviewError: gerritapi.UnexpectedStatusError{Operation: "SetReview", StatusCode: 403}}
	factory, creationError := origin.NewFeedbackEndpointFactory(poster, testRepositoryURLConstant, nil, zap.NewNop())
	require.NoError(testInstance, creationError)

	endpoint, endpointError := factory.FeedbackEndpoint()
	require.NoError(testInstance, endpointError)

	_, reviewError := endpoint.PostReview(context.Background(), "3947", "abc123", gerritapi.ReviewInput{})
	var statusError gerritapi.UnexpectedStatusError
	require.ErrorAs(testInstance, reviewError, &statusError)
	require.Equal(testInstance, 403, statusError.StatusCode)
}
