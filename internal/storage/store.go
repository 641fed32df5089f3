// Package storage persists finished ensemble runs under a base directory,
// one subdirectory per run holding metadata.json and trajectories.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/cosray/internal/config"
	"github.com/san-kum/cosray/internal/sim"
	"github.com/san-kum/cosray/internal/vec"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one saved ensemble. Quantities keep the units the
// config quotes them in (pc, EeV).
type RunMetadata struct {
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Candidates int                `json:"candidates"`
	Steps      int                `json:"steps"`
	FieldModel string             `json:"field_model"`
	Charge     int                `json:"charge"`
	Mass       int                `json:"mass"`
	Energy     float64            `json:"energy_eev"`
	Tolerance  float64            `json:"tolerance"`
	MinStep    float64            `json:"min_step_pc"`
	MaxStep    float64            `json:"max_step_pc"`
	Epsilon    float64            `json:"epsilon"`
	Alpha      float64            `json:"alpha"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run directory and returns its id. Positions land in the
// CSV in meters, times in seconds, energies in the engine's energy unit;
// values are formatted to round-trip exactly.
func (s *Store) Save(label string, cfg *config.Config, results []*sim.Result, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      label,
		Timestamp:  time.Now(),
		Seed:       cfg.Run.Seed,
		Candidates: cfg.Run.Candidates,
		Steps:      cfg.Run.Steps,
		FieldModel: cfg.Field.Model,
		Charge:     cfg.Source.Charge,
		Mass:       cfg.Source.Mass,
		Energy:     cfg.Source.Energy,
		Tolerance:  cfg.Engine.Tolerance,
		MinStep:    cfg.Engine.MinStep,
		MaxStep:    cfg.Engine.MaxStep,
		Epsilon:    cfg.Engine.Epsilon,
		Alpha:      cfg.Engine.Alpha,
		Metrics:    metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectories.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"run", "seed", "time", "x", "y", "z", "energy"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for idx, r := range results {
		if r == nil || r.Trajectory == nil {
			continue
		}
		for i, p := range r.Trajectory.Positions {
			row := []string{
				strconv.Itoa(idx),
				strconv.FormatInt(r.Seed, 10),
				num(r.Trajectory.Times[i]),
				num(p.X), num(p.Y), num(p.Z),
				num(r.Trajectory.Energies[i]),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TrajectoryPath returns the location of the raw CSV for external tooling.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "trajectories.csv")
}

// LoadTrajectories reads a saved run back as one result per candidate,
// carrying the seed and trajectory. Malformed rows are skipped.
func (s *Store) LoadTrajectories(runID string) ([]*sim.Result, error) {
	file, err := os.Open(s.TrajectoryPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 7

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []*sim.Result{}, nil
	}

	byRun := make(map[int]*sim.Result)
	order := make([]int, 0)

	for _, rec := range records[1:] {
		run, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		seed, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := 0; i < 5; i++ {
			vals[i], err = strconv.ParseFloat(rec[2+i], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		res, exists := byRun[run]
		if !exists {
			res = &sim.Result{Seed: seed, Trajectory: &sim.Trajectory{}}
			byRun[run] = res
			order = append(order, run)
		}
		traj := res.Trajectory
		traj.Times = append(traj.Times, vals[0])
		traj.Positions = append(traj.Positions, vec.Vec3{X: vals[1], Y: vals[2], Z: vals[3]})
		traj.Energies = append(traj.Energies, vals[4])
		traj.Steps = len(traj.Times) - 1
	}

	results := make([]*sim.Result, 0, len(order))
	for _, run := range order {
		results = append(results, byRun[run])
	}
	return results, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
