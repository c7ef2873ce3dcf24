// internal/readiness/prober.go
// Package readiness verifies that the local backend and the article corpus
// are usable before a quiz session starts, starting the server and pulling
// the model when it can.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mwiater/recall/internal/articles"
	"github.com/mwiater/recall/internal/logging"
)

// State identifies a step in the local-backend readiness sequence.
type State int

const (
	// StateUnchecked is the initial state before any probe runs.
	StateUnchecked State = iota
	// StateCheckingService is the lightweight reachability probe.
	StateCheckingService
	// StateStartingService means the server was launched and is being polled.
	StateStartingService
	// StateServiceUp means the server answered the probe.
	StateServiceUp
	// StateCheckingModel is the installed-model listing.
	StateCheckingModel
	// StatePullingModel means the configured model is being downloaded.
	StatePullingModel
	// StateModelPresent means the configured model is installed.
	StateModelPresent
	// StateReady is the terminal success state.
	StateReady
	// StateFailed is the terminal failure state, reachable from any other.
	StateFailed
)

// String returns the state name for logs and status displays.
func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "UNCHECKED"
	case StateCheckingService:
		return "CHECKING_SERVICE"
	case StateStartingService:
		return "STARTING_SERVICE"
	case StateServiceUp:
		return "SERVICE_UP"
	case StateCheckingModel:
		return "CHECKING_MODEL"
	case StatePullingModel:
		return "PULLING_MODEL"
	case StateModelPresent:
		return "MODEL_PRESENT"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LocalBackend is the subset of the Ollama client the prober needs.
type LocalBackend interface {
	Ping(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	PullModel(ctx context.Context, name string) error
}

const (
	// pollInterval is the wait between reachability polls after launching the
	// server.
	pollInterval = time.Second
	// pollAttempts bounds the polls; the prober never retries past this
	// budget.
	pollAttempts = 10
)

// ErrCorpusEmpty indicates no source documents exist in the configured
// directory.
var ErrCorpusEmpty = errors.New("no articles found")

// Prober drives the local backend toward READY, launching the server process
// and pulling the configured model when necessary. A FAILED outcome is
// terminal and requires user intervention.
type Prober struct {
	backend LocalBackend
	model   string
	state   State

	// Launch starts the server as a detached background process. Sleep waits
	// between reachability polls. Both are injectable for tests.
	Launch func() error
	Sleep  func(time.Duration)

	// Notify, when set, receives every state transition with a display
	// message for the interactive shell.
	Notify func(State, string)
}

// NewProber builds a Prober over the given backend for the configured model.
func NewProber(backend LocalBackend, model string) *Prober {
	return &Prober{
		backend: backend,
		model:   model,
		state:   StateUnchecked,
		Launch:  launchServer,
		Sleep:   time.Sleep,
	}
}

// State returns the last state the prober reached.
func (p *Prober) State() State {
	return p.state
}

// EnsureLocal runs the full readiness sequence: reach the server (starting it
// if needed), confirm the configured model is installed (pulling it if
// needed). It returns nil once READY, or the failure message once FAILED.
func (p *Prober) EnsureLocal(ctx context.Context) error {
	p.transition(StateCheckingService, "Checking Ollama service...")
	if err := p.backend.Ping(ctx); err != nil {
		logging.LogEvent("readiness: ollama not reachable (%v), attempting to start", err)
		p.transition(StateStartingService, "Ollama not running. Attempting to start...")
		if err := p.Launch(); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return p.fail("Ollama executable not found. Please install Ollama.")
			}
			return p.fail(fmt.Sprintf("could not launch Ollama: %v", err))
		}
		if !p.waitForService(ctx) {
			return p.fail("Could not start Ollama. Please run 'ollama serve' manually.")
		}
	}
	p.transition(StateServiceUp, "Ollama service is running.")

	p.transition(StateCheckingModel, fmt.Sprintf("Checking for model %s...", p.model))
	installed, err := p.backend.ListModels(ctx)
	if err != nil {
		return p.fail(fmt.Sprintf("Error checking models: %v", err))
	}
	if !modelPresent(p.model, installed) {
		p.transition(StatePullingModel, fmt.Sprintf("Model %s not found. Pulling (this may take a while)...", p.model))
		if err := p.backend.PullModel(ctx, p.model); err != nil {
			return p.fail(fmt.Sprintf("Error pulling model: %v", err))
		}
	}
	p.transition(StateModelPresent, fmt.Sprintf("Model %s is installed.", p.model))

	p.transition(StateReady, "Ready!")
	return nil
}

// Recheck performs only the lightweight reachability probe. It is used when
// the user switches back to the local provider mid-session, where the server
// may have gone away since startup.
func (p *Prober) Recheck(ctx context.Context) error {
	return p.backend.Ping(ctx)
}

// EnsureCorpus verifies at least one source document exists in dir. This check
// runs regardless of which provider is active.
func EnsureCorpus(dir string) error {
	names, err := articles.List(dir)
	if err != nil {
		return fmt.Errorf("checking articles: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: no .md files in %s", ErrCorpusEmpty, dir)
	}
	return nil
}

// waitForService polls reachability once per interval until the server
// answers or the attempt budget is exhausted.
func (p *Prober) waitForService(ctx context.Context) bool {
	for attempt := 1; attempt <= pollAttempts; attempt++ {
		p.Sleep(pollInterval)
		if err := p.backend.Ping(ctx); err == nil {
			return true
		}
		logging.LogEvent("readiness: waiting for ollama (attempt %d/%d)", attempt, pollAttempts)
	}
	return false
}

// modelPresent reports whether the configured name matches any installed
// model. The match is deliberately a substring check so tag suffixes like
// ":latest" still count; it can false-positive on models sharing a prefix.
func modelPresent(name string, installed []string) bool {
	for _, m := range installed {
		if strings.Contains(m, name) {
			return true
		}
	}
	return false
}

func (p *Prober) transition(state State, message string) {
	p.state = state
	logging.LogEvent("readiness: %s: %s", state, message)
	if p.Notify != nil {
		p.Notify(state, message)
	}
}

func (p *Prober) fail(message string) error {
	p.transition(StateFailed, message)
	return errors.New(message)
}

// launchServer starts `ollama serve` detached, with output discarded, the
// same way a user would background it from a shell.
func launchServer() error {
	cmd := exec.Command("ollama", "serve")
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child when it eventually exits.
	go func() { _ = cmd.Wait() }()
	return nil
}
