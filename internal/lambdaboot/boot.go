// Package lambdaboot holds the Lambda cold-start bootstrap: AWS config, the
// provider API key from SSM Parameter Store and startup logging.
package lambdaboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/auth"
	"github.com/fpang/review-drafter/internal/logging"
)

// ParamEnvVar overrides the SSM parameter holding the provider API key.
const ParamEnvVar = "SSM_API_KEY_PARAM"

// AWSClients holds the AWS SDK clients used at cold start.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// ParameterGetter is the subset of the SSM client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config. Fatals on error.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// DefaultParam is the SSM parameter name used when ParamEnvVar is unset.
func DefaultParam(provider string) string {
	return fmt.Sprintf("/review-drafter/prod/%s-api-key", provider)
}

// LoadAPIKey fetches the provider's API key from SSM Parameter Store unless
// the key's environment variable is already set, and exports it so
// auth.GetAPIKey finds it. It returns the parameter name read, or "" when
// the environment already had the key.
func LoadAPIKey(ctx context.Context, client ParameterGetter, provider string) (string, error) {
	envVar := auth.KeyEnvVar(provider)
	if os.Getenv(envVar) != "" {
		return "", nil
	}
	paramName := os.Getenv(ParamEnvVar)
	if paramName == "" {
		paramName = DefaultParam(provider)
	}

	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return paramName, fmt.Errorf("failed to read API key from SSM parameter %s: %w", paramName, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return paramName, fmt.Errorf("SSM parameter %s is empty", paramName)
	}
	if err := os.Setenv(envVar, aws.ToString(result.Parameter.Value)); err != nil {
		return paramName, fmt.Errorf("failed to export %s: %w", envVar, err)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("API key loaded from SSM")
	return paramName, nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
