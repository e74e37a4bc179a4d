package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/partplan/partplan/internal/config"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "~/.partplan/state.yaml"

// Phase represents a migration workflow phase.
type Phase string

const (
	PhaseDiscovery     Phase = "discovery"
	PhaseReview        Phase = "review"
	PhasePlanCheck     Phase = "plan_check"
	PhaseScripts       Phase = "scripts"
	PhasePreMigration  Phase = "pre_migration"
	PhaseMigration     Phase = "migration"
	PhasePostMigration Phase = "post_migration"
	PhaseComparison    Phase = "comparison"
	PhaseComplete      Phase = "complete"
)

// State tracks the current migration run and its artifacts.
type State struct {
	RunID        string               `yaml:"run_id"`
	CurrentPhase Phase                `yaml:"current_phase"`
	LastUpdated  time.Time            `yaml:"last_updated"`
	Phases       map[Phase]PhaseState `yaml:"phases,omitempty"`

	SourceSchema  string `yaml:"source_schema,omitempty"`
	SourceService string `yaml:"source_service,omitempty"`

	// Artifact paths produced along the way
	PlanPath       string `yaml:"plan_path,omitempty"`
	ScriptsDir     string `yaml:"scripts_dir,omitempty"`
	PreReportPath  string `yaml:"pre_report_path,omitempty"`
	PostReportPath string `yaml:"post_report_path,omitempty"`
	ReportPath     string `yaml:"report_path,omitempty"`
}

// PhaseState tracks the outcome of a single phase.
type PhaseState struct {
	Status      string    `yaml:"status"` // pending, in_progress, complete, failed
	CompletedAt time.Time `yaml:"completed_at,omitempty"`
}

// Load reads the run state from disk. A missing file yields a fresh run.
func Load(path string) (*State, error) {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	s := &State{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if s.Phases == nil {
		s.Phases = make(map[Phase]PhaseState)
	}
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}

	return s, nil
}

// Save writes the run state to disk.
func (s *State) Save(path string) error {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	s.LastUpdated = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// New creates a fresh run state.
func New() *State {
	return &State{
		RunID:        uuid.NewString(),
		CurrentPhase: PhaseDiscovery,
		LastUpdated:  time.Now(),
		Phases:       make(map[Phase]PhaseState),
	}
}

// CompletePhase marks a phase as complete and advances to the next.
func (s *State) CompletePhase(phase Phase, next Phase) {
	s.Phases[phase] = PhaseState{
		Status:      "complete",
		CompletedAt: time.Now(),
	}
	s.CurrentPhase = next
}

// FailPhase records a failed phase without advancing.
func (s *State) FailPhase(phase Phase) {
	s.Phases[phase] = PhaseState{Status: "failed"}
	s.CurrentPhase = phase
}

// IsPhaseComplete returns true if the given phase has been completed.
func (s *State) IsPhaseComplete(phase Phase) bool {
	ps, ok := s.Phases[phase]
	return ok && ps.Status == "complete"
}
