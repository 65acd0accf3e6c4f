package mapfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/script"
)

//go:embed scenario.schema.json
var scenarioSchemaJSON string

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrNoGridSource    = errors.New("scenario has no grid source")
)

// Scenario is a named grid plus the queries to run against it
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Grid        GridSource `yaml:"grid"`
	Queries     []Query    `yaml:"queries,omitempty"`

	// Dir resolves relative file and script paths, set by LoadScenario
	Dir string `yaml:"-"`
}

// GridSource holds exactly one of inline rows, a grid file, or a Lua script
type GridSource struct {
	Rows   []string `yaml:"rows,omitempty"`
	File   string   `yaml:"file,omitempty"`
	Script string   `yaml:"script,omitempty"`
}

// Query is one start/goal pair. Cost is the expected octile cost, -1 for no route, nil when unchecked.
type Query struct {
	Name          string `yaml:"name,omitempty"`
	Start         Point  `yaml:"start"`
	Goal          Point  `yaml:"goal"`
	Cost          *int   `yaml:"cost,omitempty"`
	MaxExpansions int    `yaml:"max_expansions,omitempty"`
}

// Point is an [x, y] pair
type Point [2]int

func (p Point) Position() navigation.Position { return navigation.Pos(p[0], p[1]) }

func PointOf(p navigation.Position) Point { return Point{p.X, p.Y} }

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func scenarioSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("scenario.schema.json", scenarioSchemaJSON)
	})
	return schema, schemaErr
}

// ParseScenario decodes YAML, validating it against the scenario schema first
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return sc, fmt.Errorf("scenario yaml: %w", err)
	}
	// Normalise YAML scalars to JSON types before validation
	jb, err := json.Marshal(doc)
	if err != nil {
		return sc, fmt.Errorf("scenario yaml: %w", err)
	}
	var v any
	if err := json.Unmarshal(jb, &v); err != nil {
		return sc, fmt.Errorf("scenario yaml: %w", err)
	}

	s, err := scenarioSchema()
	if err != nil {
		return sc, fmt.Errorf("compile scenario schema: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return sc, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("scenario yaml: %w", err)
	}
	return sc, nil
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	sc, err := ParseScenario(b)
	if err != nil {
		return sc, fmt.Errorf("%s: %w", path, err)
	}
	sc.Dir = filepath.Dir(path)
	return sc, nil
}

// SaveScenario writes sc as YAML
func SaveScenario(path string, sc Scenario) error {
	b, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadGrid resolves the grid source. Script endpoints become a query when the scenario has none.
func (sc *Scenario) LoadGrid(log *zap.Logger) (*navigation.Grid, error) {
	switch {
	case len(sc.Grid.Rows) > 0:
		return ParseRows(sc.Grid.Rows)

	case sc.Grid.File != "":
		path := sc.resolve(sc.Grid.File)
		if strings.HasSuffix(path, ".zst") {
			return ReadGrid(path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseText(f)

	case sc.Grid.Script != "":
		e := script.NewEngine(log)
		defer e.Close()
		res, err := e.RunFile(sc.resolve(sc.Grid.Script))
		if err != nil {
			return nil, err
		}
		if len(sc.Queries) == 0 && res.Start != nil && res.Goal != nil {
			sc.Queries = []Query{{Name: "script", Start: PointOf(*res.Start), Goal: PointOf(*res.Goal)}}
		}
		return res.Grid, nil
	}
	return nil, fmt.Errorf("%s: %w", sc.Name, ErrNoGridSource)
}

func (sc *Scenario) resolve(p string) string {
	if filepath.IsAbs(p) || sc.Dir == "" {
		return p
	}
	return filepath.Join(sc.Dir, p)
}
