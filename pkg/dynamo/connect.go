package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Connect builds a DynamoDB client from the configuration and verifies the
// configured table is reachable before returning. The probe is retried
// RetryAttempts times with RetryInterval between attempts, bounded by
// ConnectTimeout.
//
// When Endpoint is set (DynamoDB Local or similar) the client uses static
// placeholder credentials so no AWS profile is required on the host.
func Connect(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Join(ErrLoadAWSConfig, err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for range attempts {
		if err = probe(ctx, client, cfg.Table); err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrTableNotReady, err, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrTableNotReady, err)
}

// Healthcheck returns a readiness probe for the configured table, suitable
// for httpserver.HealthCheckHandler.
func Healthcheck(client *dynamodb.Client, table string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := probe(ctx, client, table); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func probe(ctx context.Context, client *dynamodb.Client, table string) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	return err
}
