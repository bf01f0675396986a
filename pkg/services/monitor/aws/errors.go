package aws

import (
	"errors"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

func wrapSDKError(op string, err error) error {
	upstream := &domain.UpstreamError{Provider: domain.ProviderAWSEC2, Operation: op, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		upstream.Code = apiErr.ErrorCode()
		upstream.Message = apiErr.ErrorMessage()
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		upstream.StatusCode = respErr.HTTPStatusCode()
	}
	return upstream
}
