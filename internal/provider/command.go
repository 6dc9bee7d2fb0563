package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/research"
)

const commandWaitDelay = 2 * time.Second

// Command runs an external program and caches its standard output.
//
// The placeholders {topic} and {slug} are substituted in the arguments. Without
// placeholders the topic is appended as the last argument. LORE_TOPIC and
// LORE_SLUG are always set in the environment.
type Command struct {
	argv   []string
	logger *zap.Logger
}

var _ research.Researcher = (*Command)(nil)

// NewCommand builds the backend for argv
func NewCommand(argv []string, logger *zap.Logger) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("new command provider: missing command")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Command{argv: append([]string(nil), argv...), logger: logger}, nil
}

// Name implements research.Researcher
func (p *Command) Name() string { return NameCommand }

// Research runs the command; a non-zero exit fails with its stderr
func (p *Command) Research(ctx context.Context, req research.Request) (*research.Findings, error) {
	args := p.args(req)
	cmd := exec.CommandContext(ctx, p.argv[0], args...)
	cmd.Env = append(os.Environ(), "LORE_TOPIC="+req.Topic, "LORE_SLUG="+req.Slug)
	cmd.WaitDelay = commandWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("running research command", zap.String("command", p.argv[0]), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("run %s: %w", p.argv[0], ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", p.argv[0], err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", p.argv[0], err)
	}

	return findingsFromMarkdown(stdout.String()), nil
}

func (p *Command) args(req research.Request) []string {
	r := strings.NewReplacer("{topic}", req.Topic, "{slug}", req.Slug)
	args := make([]string, 0, len(p.argv))
	substituted := false
	for _, a := range p.argv[1:] {
		if strings.Contains(a, "{topic}") || strings.Contains(a, "{slug}") {
			substituted = true
		}
		args = append(args, r.Replace(a))
	}
	if !substituted {
		args = append(args, req.Topic)
	}
	return args
}
