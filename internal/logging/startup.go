package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects a binary's identity, provider, configuration and
// feature flags, then emits a single structured event summarising how the
// process was started.
type StartupLogger struct {
	name         string
	commitHash   string
	initDuration time.Duration

	provider string
	model    string
	ssmParam string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given binary name
// (e.g. "review-web", "review-lambda").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// CommitHash sets the git commit hash baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// Provider records the text-generation provider and model in use.
func (s *StartupLogger) Provider(provider, model string) *StartupLogger {
	s.provider = provider
	s.model = model
	return s
}

// SSMParam records the SSM parameter path the API key was loaded from.
// Only the path is logged, never the value.
func (s *StartupLogger) SSMParam(path string) *StartupLogger {
	s.ssmParam = path
	return s
}

// Feature registers a boolean feature flag (e.g. "metrics", "cors").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long initialization took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured INFO event with everything collected.
func (s *StartupLogger) Log() {
	evt := log.Info()

	proc := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH)
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		proc = proc.Str("functionName", fn).Str("region", os.Getenv("AWS_REGION"))
	}
	if s.commitHash != "" {
		proc = proc.Str("commitHash", s.commitHash)
	}
	evt = evt.Dict("process", proc)

	if s.provider != "" {
		p := zerolog.Dict().Str("name", s.provider).Str("model", s.model)
		if s.ssmParam != "" {
			p = p.Str("ssmParam", s.ssmParam)
		}
		evt = evt.Dict("provider", p)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Startup complete")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
