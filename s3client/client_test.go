package s3client

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/require"
)

func TestReadEnvironment(t *testing.T) {
	t.Setenv("ITN_STORAGE_BUCKET", "documents")
	t.Setenv("ITN_AWS_REGION", "us-east-1")
	t.Setenv("ITN_ENV", "dev")
	t.Setenv("ITN_AWS_ENDPOINT_URL", "http://localstack:4566")
	t.Setenv("ITN_AWS_ACCESS_ID", "id")
	t.Setenv("ITN_AWS_ACCESS_KEY", "key")

	env, err := ReadEnvironment()
	require.NoError(t, err)
	require.Equal(t, "documents", env.BucketName)

	cfg, err := env.staticConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localstack:4566", aws.StringValue(cfg.Endpoint))
	require.True(t, aws.BoolValue(cfg.S3ForcePathStyle))

	env.Env = "prod"
	cfg, err = env.staticConfig()
	require.NoError(t, err)
	require.Nil(t, cfg.Endpoint)

	env.AccessKeyID = ""
	_, err = env.staticConfig()
	require.Error(t, err)
}

func TestClosedClient(t *testing.T) {
	client := &Client{}
	_, err := client.Download("missing")
	require.Error(t, err)
	_, err = client.Upload("{}", "missing")
	require.Error(t, err)
}
