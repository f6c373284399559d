// Package awscli runs operations through the aws command line tool.
package awscli

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
	"cloudcollector/internal/remote"
	"cloudcollector/pkg/document"
)

const (
	// DefaultTimeout bounds a single aws invocation.
	DefaultTimeout = 2 * time.Minute
	// FallbackRegion is used when the profile has no region configured.
	FallbackRegion = "ap-southeast-1"
)

var (
	// ErrNotInstalled is returned when the aws binary cannot be run.
	ErrNotInstalled = errors.New("aws cli not available")
	// ErrCredentials marks credential validation failures.
	ErrCredentials = errors.New("aws credentials rejected")
)

// CommandFunc builds the process for one invocation. Tests replace it.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CLI is a remote.Client backed by the aws binary. The zero value is not
// usable; call New.
type CLI struct {
	Profile string
	Binary  string
	Timeout time.Duration
	Limiter *rate.Limiter
	Logger  *zap.SugaredLogger
	Command CommandFunc
}

var _ remote.Client = (*CLI)(nil)

// Option configures a CLI.
type Option func(*CLI)

// WithTimeout sets the per-invocation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *CLI) { c.Timeout = d }
}

// WithRate limits invocations to perSecond, with bursts of up to burst.
// A non-positive rate disables limiting.
func WithRate(perSecond float64, burst int) Option {
	return func(c *CLI) {
		if perSecond <= 0 {
			c.Limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *CLI) { c.Logger = l }
}

// WithCommand replaces how processes are created.
func WithCommand(fn CommandFunc) Option {
	return func(c *CLI) { c.Command = fn }
}

// New returns a CLI for profile.
func New(profile string, opts ...Option) *CLI {
	c := &CLI{
		Profile: profile,
		Binary:  "aws",
		Timeout: DefaultTimeout,
		Command: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger = logging.Or(c.Logger)
	return c
}

// Perform runs `aws --profile P --output json --no-cli-pager <op>` and decodes
// stdout. Empty output decodes to an empty object.
func (c *CLI) Perform(ctx context.Context, op catalog.Operation) (any, error) {
	if op.Empty() {
		return nil, remote.Failed(errors.New("empty operation"), op)
	}
	args := append([]string{"--profile", c.Profile, "--output", "json", "--no-cli-pager"}, op.Args()...)

	start := time.Now()
	stdout, stderr, err := c.run(ctx, args...)
	if err != nil {
		c.Logger.Debugw("aws operation failed", "operation", op.String(), "duration", time.Since(start), "error", err)
		return nil, remote.Failed(withStderr(err, stderr), op)
	}

	doc, err := document.Decode(stdout)
	if err != nil {
		return nil, remote.Failed(errors.Wrap(err, "decode output"), op)
	}
	c.Logger.Debugw("aws operation done", "operation", op.String(), "duration", time.Since(start))
	return doc, nil
}

// CheckAvailable verifies that the binary runs.
func (c *CLI) CheckAvailable(ctx context.Context) error {
	if _, _, err := c.run(ctx, "--version"); err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "run %s --version", c.Binary), ErrNotInstalled),
			"install the AWS CLI: https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
		)
	}
	return nil
}

// ValidateCredentials calls sts get-caller-identity and classifies failures.
func (c *CLI) ValidateCredentials(ctx context.Context) error {
	_, stderr, err := c.run(ctx, "--profile", c.Profile, "--output", "json", "sts", "get-caller-identity")
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(string(stderr))
	var out error
	switch {
	case strings.Contains(msg, "InvalidToken") || strings.Contains(msg, "malformed"):
		out = errors.WithHint(
			errors.Newf("AWS credentials are invalid or expired for profile '%s': %s", c.Profile, msg),
			"refresh your credentials",
		)
	case strings.Contains(msg, "could not be found") || strings.Contains(msg, "NoCredentialsError"):
		out = errors.WithHint(
			errors.Newf("no credentials found for profile '%s': %s", c.Profile, msg),
			"configure credentials with `aws configure --profile "+c.Profile+"`",
		)
	case strings.Contains(msg, "ExpiredToken"):
		out = errors.WithHint(
			errors.Newf("AWS credentials have expired for profile '%s': %s", c.Profile, msg),
			"refresh your credentials",
		)
	default:
		out = errors.Wrapf(withStderr(err, stderr), "failed to validate AWS credentials for profile '%s'", c.Profile)
	}
	return errors.Mark(out, ErrCredentials)
}

// DefaultRegion reads the profile's configured region, falling back to
// FallbackRegion when none is set.
func (c *CLI) DefaultRegion(ctx context.Context) (string, error) {
	stdout, _, err := c.run(ctx, "configure", "get", "region", "--profile", c.Profile)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return FallbackRegion, nil
	}
	if region := strings.TrimSpace(string(stdout)); region != "" {
		return region, nil
	}
	return FallbackRegion, nil
}

// Regions lists the region names enabled for the account.
func (c *CLI) Regions(ctx context.Context) ([]string, error) {
	doc, err := c.Perform(ctx, catalog.NewOperation("ec2", "describe-regions", "--query", "Regions[].RegionName"))
	if err != nil {
		return nil, err
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, errors.Newf("unexpected describe-regions output %T", doc)
	}
	regions := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			regions = append(regions, s)
		}
	}
	return regions, nil
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, nil, errors.Wrap(err, "rate limit")
		}
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := c.Command(ctx, c.Binary, args...)
	cmd.Env = append(cmd.Environ(), "AWS_PAGER=")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = errors.Wrap(ctx.Err(), err.Error())
		}
		return stdout.Bytes(), stderr.Bytes(), err
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func withStderr(err error, stderr []byte) error {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return errors.WithDetail(errors.Wrap(err, msg), msg)
	}
	return err
}
