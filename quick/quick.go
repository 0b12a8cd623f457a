// =============================================================================
// Package quick — One-Line Swarm Construction
// =============================================================================
// Provides a convenience entry point for standing up a complete swarm
// pipeline (director, dispatcher, executor, synthesizer, orchestrator) with
// minimal boilerplate. Built-in teams and marketing tools are registered
// automatically; stores default to in-process implementations.
//
// Usage:
//
//	import "github.com/vibecaas/nanoswarm/quick"
//
//	o, err := quick.New(quick.WithOllama(""))              // OLLAMA_API_KEY
//	o, err := quick.New(quick.WithProvider(myProvider))
//	result, err := quick.Run(ctx, "Plan a product launch campaign",
//	    quick.WithProvider(myProvider))
//
// =============================================================================
package quick

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/jobs"
	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/llm/openaicompat"
	"github.com/vibecaas/nanoswarm/memory"
	"github.com/vibecaas/nanoswarm/swarm"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/tool/marketing"
)

// Option configures the orchestrator created by New.
type Option func(*options)

type options struct {
	provider llm.Provider
	logger   *zap.Logger

	// Backend shortcut fields — used when provider is nil.
	ollamaKey string
	nimKey    string

	teams        []team.Team
	memoryWindow int
	agentTimeout time.Duration
	runTimeout   time.Duration
	toolRounds   int
	llmAlloc     bool
}

// WithProvider sets a pre-built inference provider.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithOllama enables the Ollama Cloud backend. An empty key falls back to
// the OLLAMA_API_KEY environment variable.
func WithOllama(apiKey string) Option {
	return func(o *options) {
		if apiKey == "" {
			apiKey = os.Getenv("OLLAMA_API_KEY")
		}
		o.ollamaKey = apiKey
	}
}

// WithNIM enables the NVIDIA NIM backend as primary or failover. An empty
// key falls back to the NIM_API_KEY environment variable.
func WithNIM(apiKey string) Option {
	return func(o *options) {
		if apiKey == "" {
			apiKey = os.Getenv("NIM_API_KEY")
		}
		o.nimKey = apiKey
	}
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTeam registers an additional team beyond the built-in catalog.
func WithTeam(t team.Team) Option {
	return func(o *options) { o.teams = append(o.teams, t) }
}

// WithMemoryWindow sets the per-thread memory window size.
func WithMemoryWindow(n int) Option {
	return func(o *options) { o.memoryWindow = n }
}

// WithTimeouts sets per-specialist and whole-run timeouts.
func WithTimeouts(agent, run time.Duration) Option {
	return func(o *options) {
		o.agentTimeout = agent
		o.runTimeout = run
	}
}

// WithToolRounds bounds tool-call rounds per specialist.
func WithToolRounds(n int) Option {
	return func(o *options) { o.toolRounds = n }
}

// WithLLMAllocation enables backend-assisted task allocation in the director.
func WithLLMAllocation() Option {
	return func(o *options) { o.llmAlloc = true }
}

// New assembles a complete orchestrator with in-process stores.
func New(opts ...Option) (*swarm.Orchestrator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	p, err := resolveProvider(o)
	if err != nil {
		return nil, err
	}

	toolReg := tool.NewRegistry(o.logger)
	if err := marketing.RegisterAll(toolReg); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	teamReg := team.NewRegistry(o.logger)
	if err := team.RegisterBuiltin(teamReg); err != nil {
		return nil, fmt.Errorf("register teams: %w", err)
	}
	for _, t := range o.teams {
		if err := teamReg.Register(t); err != nil {
			return nil, fmt.Errorf("register team %q: %w", t.Name, err)
		}
	}

	var allocProvider llm.Provider
	if o.llmAlloc {
		allocProvider = p
	}
	director := swarm.NewDirector(teamReg, allocProvider, o.logger)
	executor := swarm.NewExecutor(p, toolReg, o.logger)
	if o.toolRounds > 0 {
		executor = executor.WithToolRounds(o.toolRounds)
	}
	dispatcher := swarm.NewDispatcher(executor, 0, o.logger)
	synthesizer := swarm.NewSynthesizer(o.logger)

	return swarm.NewOrchestrator(
		director, dispatcher, synthesizer,
		teamReg,
		jobs.NewInMemoryStore(),
		memory.NewInMemoryStore(o.memoryWindow),
		nil,
		swarm.Options{AgentTimeout: o.agentTimeout, RunTimeout: o.runTimeout},
		o.logger,
	), nil
}

// Run assembles an orchestrator and executes a single synchronous run.
// The team is auto-routed from the objective's keywords.
func Run(ctx context.Context, objective string, opts ...Option) (*swarm.RunResult, error) {
	o, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, swarm.RunRequest{Objective: objective})
}

func resolveProvider(o *options) (llm.Provider, error) {
	if o.provider != nil {
		return o.provider, nil
	}

	var backends []llm.Provider
	if o.ollamaKey != "" {
		backends = append(backends, openaicompat.New(openaicompat.OllamaConfig(o.ollamaKey), o.logger))
	}
	if o.nimKey != "" {
		backends = append(backends, openaicompat.New(openaicompat.NIMConfig(o.nimKey), o.logger))
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("provider is required: use WithProvider, WithOllama, or WithNIM")
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return llm.NewFailoverProvider(backends, 0, o.logger)
}
