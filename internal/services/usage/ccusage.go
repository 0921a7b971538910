// Package usage reads Claude token usage through the ccusage CLI and
// keeps the latest snapshot fresh.
package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/logger"
)

// execCommand is replaced in tests.
var execCommand = exec.CommandContext

const defaultCommandTimeout = 30 * time.Second

// TokenCounts breaks down the tokens of a billing block.
type TokenCounts struct {
	InputTokens              int64 `json:"inputTokens"`
	OutputTokens             int64 `json:"outputTokens"`
	CacheCreationInputTokens int64 `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     int64 `json:"cacheReadInputTokens"`
}

// BurnRate is the consumption speed ccusage reports for an active block.
type BurnRate struct {
	TokensPerMinute             float64 `json:"tokensPerMinute"`
	TokensPerMinuteForIndicator float64 `json:"tokensPerMinuteForIndicator"`
	CostPerHour                 float64 `json:"costPerHour"`
}

// Projection is ccusage's estimate for the end of the active block.
type Projection struct {
	TotalTokens      int64   `json:"totalTokens"`
	TotalCost        float64 `json:"totalCost"`
	RemainingMinutes int     `json:"remainingMinutes"`
}

// Block is a five-hour billing block from "ccusage blocks --json".
type Block struct {
	BurnRate      *BurnRate   `json:"burnRate"`
	Projection    *Projection `json:"projection"`
	ActualEndTime *string     `json:"actualEndTime"`
	ID            string      `json:"id"`
	StartTime     string      `json:"startTime"`
	EndTime       string      `json:"endTime"`
	Models        []string    `json:"models"`
	TokenCounts   TokenCounts `json:"tokenCounts"`
	TotalTokens   int64       `json:"totalTokens"`
	CostUSD       float64     `json:"costUSD"`
	Entries       int         `json:"entries"`
	IsActive      bool        `json:"isActive"`
	IsGap         bool        `json:"isGap"`
}

// BlocksResponse is the output of "ccusage blocks --json".
type BlocksResponse struct {
	Blocks []Block `json:"blocks"`
}

// DailyEntry is one day from "ccusage daily --json".
type DailyEntry struct {
	Date                string   `json:"date"`
	ModelsUsed          []string `json:"modelsUsed"`
	InputTokens         int64    `json:"inputTokens"`
	OutputTokens        int64    `json:"outputTokens"`
	CacheCreationTokens int64    `json:"cacheCreationTokens"`
	CacheReadTokens     int64    `json:"cacheReadTokens"`
	TotalTokens         int64    `json:"totalTokens"`
	TotalCost           float64  `json:"totalCost"`
}

// DailyResponse is the output of "ccusage daily --json".
type DailyResponse struct {
	Daily []DailyEntry `json:"daily"`
}

// Client runs ccusage subcommands.
type Client struct {
	paths   Paths
	timeout time.Duration
}

// ClientConfig configures a Client. Empty paths are discovered.
type ClientConfig struct {
	NodePath    string
	CcusagePath string
	Timeout     time.Duration
}

// NewClient resolves executables and returns a Client.
func NewClient(cfg ClientConfig) *Client {
	home, _ := os.UserHomeDir()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCommandTimeout
	}
	return &Client{
		paths:   DiscoverPaths(home, cfg.NodePath, cfg.CcusagePath),
		timeout: cfg.Timeout,
	}
}

// Paths returns the executables the client runs.
func (c *Client) Paths() Paths {
	return c.paths
}

// Blocks runs "ccusage blocks --json".
func (c *Client) Blocks(ctx context.Context) (*BlocksResponse, error) {
	var resp BlocksResponse
	if err := c.runJSON(ctx, "blocks", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Daily runs "ccusage daily --json".
func (c *Client) Daily(ctx context.Context) (*DailyResponse, error) {
	var resp DailyResponse
	if err := c.runJSON(ctx, "daily", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) runJSON(ctx context.Context, command string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := execCommand(ctx, c.paths.Ccusage, command, "--json")
	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(env, "PATH="+searchPath(c.paths.Node, os.Getenv("PATH")))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger.Debug("ran ccusage", "command", command, "duration", time.Since(start), "error", err)

	if err != nil {
		if ctx.Err() != nil {
			return &CommandError{Command: command, Paths: c.paths, Err: ctx.Err(), Kind: KindFailed}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return classifyExitError(command, c.paths, stderr.String(), err)
		}
		return classifyStartError(command, c.paths, err)
	}

	if err := json.Unmarshal(stdout.Bytes(), v); err != nil {
		return &CommandError{
			Command: command,
			Paths:   c.paths,
			Err:     fmt.Errorf("failed to parse ccusage %s output: %w", command, err),
			Kind:    KindParse,
		}
	}
	return nil
}
