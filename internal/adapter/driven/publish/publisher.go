// Package publish implements the MeritocracyPublisher port. Each cycle's
// meritocracy is written as a JSON list for external inspection; ReadFile
// loads it back for the CLI.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MeritocracyPublisher = (*Publisher)(nil)

// Publisher writes the meritocracy to path, replacing the file atomically
// so readers never see a partial list. An empty path disables publishing.
type Publisher struct {
	path string
}

// NewPublisher creates a Publisher writing to path.
func NewPublisher(path string) *Publisher {
	return &Publisher{path: path}
}

// Publish writes the meritocracy to disk as a sorted JSON array of logins.
func (p *Publisher) Publish(_ context.Context, meritocracy model.MeritocracySet) error {
	if p.path == "" {
		return nil
	}
	members := meritocracy.Sorted()

	data, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encode meritocracy: %w", err)
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create meritocracy directory %s: %w", dir, err)
		}
	}

	if err := atomic.WriteFile(p.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write meritocracy to %s: %w", p.path, err)
	}

	slog.Debug("meritocracy published", "path", p.path, "members", len(members))
	return nil
}

// ReadFile loads a meritocracy list previously written by Publish.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meritocracy %s: %w", path, err)
	}

	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decode meritocracy %s: %w", path, err)
	}
	return members, nil
}
