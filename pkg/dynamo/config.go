package dynamo

import "time"

type Config struct {
	Table          string        `env:"DYNAMODB_TABLE,required"`                // Table is the single-table name all records live in.
	Region         string        `env:"AWS_REGION" envDefault:"us-east-1"`      // Region is the AWS region of the table.
	Endpoint       string        `env:"DYNAMODB_ENDPOINT"`                      // Endpoint overrides the service endpoint, e.g. "http://localhost:8000" for DynamoDB Local.
	RetryAttempts  int           `env:"DYNAMODB_RETRY_ATTEMPTS" envDefault:"3"` // RetryAttempts is the number of readiness probe attempts at startup.
	RetryInterval  time.Duration `env:"DYNAMODB_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"DYNAMODB_CONNECT_TIMEOUT" envDefault:"30s"`
}
