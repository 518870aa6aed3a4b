package gerritapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	changeEndpointTemplateConstant          = "%s/changes/%s"
	reviewEndpointTemplateConstant          = "%s/changes/%s/revisions/%s/review"
	includeOptionQueryParameterConstant     = "o"
	jsonContentTypeConstant                 = "application/json"
	contentTypeHeaderNameConstant           = "Content-Type"
	xssiResponsePrefixConstant              = ")]}'"
	baseURLMissingMessageConstant           = "gerrit base url not configured"
	httpClientMissingMessageConstant        = "http client not configured"
	getChangeOperationNameConstant          = OperationName("GetChange")
	setReviewOperationNameConstant          = OperationName("SetReview")
	operationErrorTemplateConstant          = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	unexpectedStatusMessageTemplateConstant = "%s returned status %d"
	requestSentLogMessageConstant           = "Gerrit request sent"
	logFieldOperationConstant               = "operation"
	logFieldEndpointConstant                = "endpoint"
	logFieldStatusCodeConstant              = "status_code"
	transientRetryLimitConstant             = 3
	transientRetryInitialIntervalConstant   = 250 * time.Millisecond
)

// OperationName describes a named Gerrit REST operation supported by the client.
type OperationName string

// HTTPDoer is the minimal interface required from net/http.Client.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Construction sentinels.
var (
	// ErrBaseURLMissing indicates the client was constructed without a Gerrit base URL.
	ErrBaseURLMissing = errors.New(baseURLMissingMessageConstant)
	// ErrHTTPClientMissing indicates the client was constructed without an HTTP client.
	ErrHTTPClientMissing = errors.New(httpClientMissingMessageConstant)
)

// OperationError wraps transport failures for Gerrit REST operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// UnexpectedStatusError reports a non-success HTTP status from Gerrit.
type UnexpectedStatusError struct {
	Operation  OperationName
	StatusCode int
}

// Error describes the unexpected status.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusMessageTemplateConstant, statusError.Operation, statusError.StatusCode)
}

// Client coordinates Gerrit REST invocations.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     *zap.Logger
}

// NewClient constructs a Client bound to the supplied Gerrit base URL.
func NewClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return nil, ErrBaseURLMissing
	}
	if httpClient == nil {
		return nil, ErrHTTPClientMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := &Client{
		baseURL:    trimmedBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}

	return client, nil
}

// GetChange retrieves change metadata including the payload sections named in the input.
func (client *Client) GetChange(executionContext context.Context, changeIdentifier string, input GetChangeInput) (ChangeInfo, error) {
	endpoint := fmt.Sprintf(changeEndpointTemplateConstant, client.baseURL, changeIdentifier)
	if len(input.Options) > 0 {
		queryParts := make([]string, 0, len(input.Options))
		for _, includeOption := range input.Options {
			queryParts = append(queryParts, includeOptionQueryParameterConstant+"="+string(includeOption))
		}
		endpoint += "?" + strings.Join(queryParts, "&")
	}

	var changeInfo ChangeInfo
	if requestError := client.executeJSONRequest(executionContext, getChangeOperationNameConstant, http.MethodGet, endpoint, nil, &changeInfo); requestError != nil {
		return ChangeInfo{}, requestError
	}

	return changeInfo, nil
}

// SetReview posts a review to the identified change revision.
func (client *Client) SetReview(executionContext context.Context, changeIdentifier string, revisionIdentifier string, review ReviewInput) (ReviewResult, error) {
	endpoint := fmt.Sprintf(reviewEndpointTemplateConstant, client.baseURL, changeIdentifier, revisionIdentifier)

	encodedReview, encodingError := json.Marshal(review)
	if encodingError != nil {
		return ReviewResult{}, OperationError{Operation: setReviewOperationNameConstant, Cause: encodingError}
	}

	var reviewResult ReviewResult
	if requestError := client.executeJSONRequest(executionContext, setReviewOperationNameConstant, http.MethodPost, endpoint, encodedReview, &reviewResult); requestError != nil {
		return ReviewResult{}, requestError
	}

	return reviewResult, nil
}

func (client *Client) executeJSONRequest(executionContext context.Context, operation OperationName, method string, endpoint string, requestBody []byte, target any) error {
	responseBody, requestError := client.performWithRetry(executionContext, operation, method, endpoint, requestBody)
	if requestError != nil {
		return requestError
	}

	trimmedBody := strings.TrimPrefix(strings.TrimSpace(string(responseBody)), xssiResponsePrefixConstant)
	if decodingError := json.Unmarshal([]byte(trimmedBody), target); decodingError != nil {
		return ResponseDecodingError{Operation: operation, Cause: decodingError}
	}

	return nil
}

// performWithRetry retries transient transport failures and server errors.
// Client errors (4xx) are never retried.
func (client *Client) performWithRetry(executionContext context.Context, operation OperationName, method string, endpoint string, requestBody []byte) ([]byte, error) {
	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = transientRetryInitialIntervalConstant
	boundedPolicy := backoff.WithContext(backoff.WithMaxRetries(retryPolicy, transientRetryLimitConstant), executionContext)

	var responseBody []byte
	retryError := backoff.Retry(func() error {
		var bodyReader io.Reader
		if len(requestBody) > 0 {
			bodyReader = bytes.NewReader(requestBody)
		}

		request, requestCreationError := http.NewRequestWithContext(executionContext, method, endpoint, bodyReader)
		if requestCreationError != nil {
			return backoff.Permanent(requestCreationError)
		}
		if len(requestBody) > 0 {
			request.Header.Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
		}

		response, transportError := client.httpClient.Do(request)
		if transportError != nil {
			return transportError
		}
		defer response.Body.Close()

		client.logger.Debug(
			requestSentLogMessageConstant,
			zap.String(logFieldOperationConstant, string(operation)),
			zap.String(logFieldEndpointConstant, endpoint),
			zap.Int(logFieldStatusCodeConstant, response.StatusCode),
		)

		if response.StatusCode >= http.StatusInternalServerError {
			return UnexpectedStatusError{Operation: operation, StatusCode: response.StatusCode}
		}
		if response.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(UnexpectedStatusError{Operation: operation, StatusCode: response.StatusCode})
		}

		readBody, readError := io.ReadAll(response.Body)
		if readError != nil {
			return readError
		}

		responseBody = readBody
		return nil
	}, boundedPolicy)

	if retryError != nil {
		var statusError UnexpectedStatusError
		if errors.As(retryError, &statusError) {
			return nil, statusError
		}
		return nil, OperationError{Operation: operation, Cause: retryError}
	}

	return responseBody, nil
}
