package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/config"
	"github.com/roach88/factoryledger/internal/database"
	"github.com/roach88/factoryledger/internal/harness"
	"github.com/roach88/factoryledger/internal/store"
)

// commandEnv carries what a command needs once flags are parsed.
// Every loader reports its own failure through out and returns an
// *ExitError, so RunE can return it as is.
type commandEnv struct {
	out    *OutputFormatter
	cfg    *config.Config
	logger *slog.Logger
}

func (o *RootOptions) setup(cmd *cobra.Command) (*commandEnv, error) {
	out := o.formatter(cmd)

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	logger, err := o.logger(cmd, cfg)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	return &commandEnv{out: out, cfg: cfg, logger: logger}, nil
}

// catalog loads and validates the configured catalog.
func (e *commandEnv) catalog() (*database.Database, error) {
	path := e.cfg.Catalog.Dir
	if path == "" {
		return nil, e.out.Fail(ExitCommandError, ErrCodeCatalogLoad,
			"no catalog: pass --catalog or set catalog.dir", nil)
	}

	e.out.VerboseLog("Loading catalog from %s", path)
	db, err := database.Load(path)
	if err != nil {
		code := ErrCodeCatalogLoad
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, e.out.Fail(ExitCommandError, code, err.Error(), nil)
	}

	if problems := database.Validate(db); len(problems) > 0 {
		return nil, e.out.Fail(ExitCommandError, ErrCodeCatalogInvalid,
			fmt.Sprintf("catalog has %d problem(s)", len(problems)), problemStrings(problems))
	}

	stats := db.Stats()
	e.out.VerboseLog("Catalog: %d building(s), %d recipe(s), %d item(s)", stats.Buildings, stats.Recipes, stats.Items)
	return db, nil
}

// readTree reads a YAML or JSON tree document. The root must be a group.
func (e *commandEnv) readTree(path string, db database.Lookup) (accounting.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, e.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("tree not found: %s", path), nil)
		}
		return nil, e.out.Fail(ExitCommandError, ErrCodeTree, err.Error(), nil)
	}

	root, err := decodeTree(data, db)
	if err != nil {
		return nil, e.out.Fail(ExitCommandError, ErrCodeTree, fmt.Sprintf("%s: %v", path, err), nil)
	}
	return root, nil
}

// readScript reads a YAML edit script.
func (e *commandEnv) readScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, e.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("script not found: %s", path), nil)
		}
		return nil, e.out.Fail(ExitCommandError, ErrCodeScript, err.Error(), nil)
	}

	script, err := ParseScript(data)
	if err != nil {
		return nil, e.out.Fail(ExitCommandError, ErrCodeScript, fmt.Sprintf("%s: %v", path, err), nil)
	}
	return script, nil
}

// openStore opens the configured store.
func (e *commandEnv) openStore() (*store.Store, error) {
	e.out.VerboseLog("Opening store %s", e.cfg.Store.Path)
	st, err := store.Open(e.cfg.Store.Path)
	if err != nil {
		return nil, e.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	return st, nil
}

func decodeTree(data []byte, db database.Lookup) (accounting.Node, error) {
	var doc accounting.NodeDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if doc.Group == nil {
		return nil, fmt.Errorf("tree root must be a group")
	}
	return doc.Build(db)
}

// writeTree writes root as YAML for .yaml/.yml paths and as canonical JSON
// otherwise.
func writeTree(path string, root accounting.Node) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(accounting.ToDoc(root))
	default:
		data, err = accounting.MarshalCanonical(root)
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Script is a list of edits for the apply command.
type Script struct {
	// Name names the graph when it is saved; defaults to the tree's name.
	Name string `yaml:"name,omitempty"`

	// Steps use the scenario step format. Expect defaults to "ok".
	Steps []harness.Step `yaml:"steps"`
}

// ParseScript decodes a YAML edit script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script has no steps")
	}
	for i, step := range s.Steps {
		if step.Target == "" {
			return nil, fmt.Errorf("steps[%d]: target is required", i)
		}
		if _, ok := step.Request["type"]; !ok {
			return nil, fmt.Errorf("steps[%d]: request type is required", i)
		}
	}
	return &s, nil
}

func problemStrings(problems []database.ValidationError) []string {
	out := make([]string, len(problems))
	for i, p := range problems {
		out[i] = p.Error()
	}
	return out
}
