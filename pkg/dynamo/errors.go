package dynamo

import "errors"

var (
	ErrLoadAWSConfig     = errors.New("failed to load AWS configuration")
	ErrTableNotReady     = errors.New("dynamodb table did not become ready within the given time period")
	ErrHealthcheckFailed = errors.New("dynamodb healthcheck failed")
)
