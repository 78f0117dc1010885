package utils

import "os"

var (
	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_SESSION_TOKEN     = os.Getenv("AWS_SESSION_TOKEN")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "eu-west-2")

	// S3_ENDPOINT overrides the S3 endpoint, e.g. for minio or localstack
	S3_ENDPOINT         = os.Getenv("S3_ENDPOINT")
	S3_FORCE_PATH_STYLE = os.Getenv("S3_FORCE_PATH_STYLE") == "1"

	// LOCAL_STORE_ROOT enables file:// locations rooted at this directory
	LOCAL_STORE_ROOT = os.Getenv("LOCAL_STORE_ROOT")

	// MISSING_FIELD_POLICY is one of ignore, create, fail
	MISSING_FIELD_POLICY = GetEnvOrDefault("MISSING_FIELD_POLICY", "ignore")
)
