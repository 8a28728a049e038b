package s3client

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"text2phenotype.com/itn/logger"
)

const JSONContentType = "application/json"

type EnvironmentConfig struct {
	BucketName  string `envconfig:"ITN_STORAGE_BUCKET" required:"true"`
	Env         string `envconfig:"ITN_ENV" default:"prod"`
	Region      string `envconfig:"ITN_AWS_REGION" required:"true"`
	AwsEndpoint string `envconfig:"ITN_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"ITN_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"ITN_AWS_ACCESS_KEY" default:""`
}

// Client reads document texts from and writes tagging results to one bucket.
// A request failing on the current session is retried once on a fresh one.
type Client struct {
	env  EnvironmentConfig
	mu   sync.Mutex
	sess *session.Session
	// generation counts refreshes so concurrent failures refresh only once.
	generation int
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

func ReadEnvironment() (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	return config, err
}

func New() (*Client, error) {
	env, err := ReadEnvironment()
	if err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{env: env}
	sess, err := client.newSession()
	if err != nil {
		return nil, err
	}
	client.sess = sess
	return client, nil
}

func (client *Client) Upload(data string, key string) (*s3manager.UploadOutput, error) {
	var output *s3manager.UploadOutput
	err := client.withSession(func(sess *session.Session) error {
		var err error
		output, err = client.upload(sess, &s3manager.UploadInput{
			Bucket:      aws.String(client.env.BucketName),
			Key:         aws.String(key),
			Body:        strings.NewReader(data),
			ContentType: aws.String(JSONContentType),
		})
		return err
	})
	return output, err
}

func (client *Client) Download(key string) ([]byte, error) {
	var res []byte
	err := client.withSession(func(sess *session.Session) error {
		var err error
		res, err = client.download(sess, &s3.GetObjectInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
		})
		return err
	})
	return res, err
}

func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.sess = nil
	clientLogger.Info().Msg("Closing client")
}

func (client *Client) current() (*session.Session, int, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.sess == nil {
		return nil, 0, errors.New("could not get session")
	}
	return client.sess, client.generation, nil
}

// refresh replaces the session unless another caller already did so since
// generation was observed.
func (client *Client) refresh(generation int, cause error) (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.generation != generation && client.sess != nil {
		return client.sess, nil
	}
	clientLogger.Error().Err(cause).Msg("Caught error while using S3 session, trying to refresh it")
	sess, err := client.newSession()
	if err != nil {
		clientLogger.Error().Err(err).Msg("Caught error while refreshing S3 session")
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	client.sess = sess
	client.generation++
	clientLogger.Info().Msg("Successfully refreshed session")
	return sess, nil
}

func (client *Client) withSession(do func(sess *session.Session) error) error {
	sess, generation, err := client.current()
	if err != nil {
		return err
	}
	if err = do(sess); err == nil {
		return nil
	}
	sess, err = client.refresh(generation, err)
	if err != nil {
		return err
	}
	return do(sess)
}

func (client *Client) upload(sess *session.Session, params *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
	itnLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))
	itnLogger.Debug().Msg("Uploading the file")
	return uploader.Upload(params)
}

func (client *Client) download(sess *session.Session, params *s3.GetObjectInput) ([]byte, error) {
	itnLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))
	buf := aws.NewWriteAtBuffer([]byte{})

	itnLogger.Debug().Msg("Downloading file")
	size, err := downloader.Download(buf, params)
	if err != nil {
		itnLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	itnLogger.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

func (env EnvironmentConfig) instanceConfig() *aws.Config {
	return &aws.Config{
		Region:     aws.String(env.Region),
		MaxRetries: aws.Int(4),
		LogLevel:   aws.LogLevel(aws.LogDebug),
	}
}

func (env EnvironmentConfig) staticConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(env.AccessKeyID, env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		return nil, fmt.Errorf("credentials from environment: %w", err)
	}
	cfg := aws.NewConfig().
		WithRegion(env.Region).
		WithMaxRetries(4).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)

	if env.Env == "dev" && env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(env.AwsEndpoint).
			WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

// newSession prefers the instance role and falls back to static credentials
// from the environment.
func (client *Client) newSession() (*session.Session, error) {
	sess, err := session.NewSession(client.env.instanceConfig())
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err == nil {
		clientLogger.Info().Msg("S3 session successfully initialized using EC2")
		return sess, nil
	}
	clientLogger.Info().Msg("Could not initialize S3 session using EC2, trying env credentials")
	cfg, err := client.env.staticConfig()
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	sess, err = session.NewSession(cfg)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, errors.New("could not initialize S3 session")
	}
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

type s3Logger struct {
	itnLogger zerolog.Logger
}

func getLogger(itnLogger zerolog.Logger) *s3Logger {
	return &s3Logger{itnLogger}
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.itnLogger.Debug().Msg(fmt.Sprint(v...))
}
