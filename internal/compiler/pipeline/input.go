package pipeline

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
)

// Algorithm is the decoded algorithm-layer input: the declared quantities and
// the invoke units that reference them. It is the structured form consumed
// from the front-end collaborator; parsing algorithm source text is out of
// scope.
type Algorithm struct {
	Quantities []*metadata.Quantity
	Program    *ast.Program
}

type algorithmFile struct {
	Quantities []*metadata.Quantity `yaml:"quantities"`
	Invokes    []invokeSpec         `yaml:"invokes"`
}

type invokeSpec struct {
	Name  string     `yaml:"name"`
	Calls []callSpec `yaml:"calls"`
}

type callSpec struct {
	Kernel string   `yaml:"kernel"`
	Args   []string `yaml:"args"`
}

// ParseAlgorithmYAML decodes an algorithm file. Call arguments that parse as
// numbers or logical constants become literals; everything else is a named
// quantity reference.
func ParseAlgorithmYAML(data []byte) (*Algorithm, error) {
	var file algorithmFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode algorithm file: %w", err)
	}

	seen := make(map[string]bool, len(file.Quantities))
	for _, q := range file.Quantities {
		if err := metadata.ValidateQuantity(q); err != nil {
			return nil, err
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("quantity '%s' is declared more than once", q.Name)
		}
		seen[q.Name] = true
	}

	alg := &Algorithm{Quantities: file.Quantities, Program: &ast.Program{}}
	for i, inv := range file.Invokes {
		if inv.Name == "" {
			return nil, fmt.Errorf("invoke %d has no name", i)
		}
		unit := &ast.InvokeUnit{
			Name: inv.Name,
			Loc:  ast.SourceLocation{Line: i + 1, Column: 1},
		}
		for j, call := range inv.Calls {
			if call.Kernel == "" {
				return nil, fmt.Errorf("invoke '%s' call %d names no kernel", inv.Name, j)
			}
			kc := &ast.KernelCall{
				Kernel: call.Kernel,
				Loc:    ast.SourceLocation{Line: i + 1, Column: j + 1},
			}
			for _, arg := range call.Args {
				kc.Args = append(kc.Args, parseArg(arg, kc.Loc))
			}
			unit.Calls = append(unit.Calls, kc)
		}
		alg.Program.Invokes = append(alg.Program.Invokes, unit)
	}
	return alg, nil
}

// LoadAlgorithmFile reads and parses an algorithm YAML file
func LoadAlgorithmFile(path string) (*Algorithm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read algorithm file: %w", err)
	}
	alg, perr := ParseAlgorithmYAML(data)
	if perr != nil {
		return nil, fmt.Errorf("%s: %w", path, perr)
	}
	return alg, nil
}

func parseArg(token string, loc ast.SourceLocation) ast.ArgExpr {
	if token == ".true." || token == ".false." {
		return &ast.LiteralExpr{Value: token, Loc: loc}
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil {
		return &ast.LiteralExpr{Value: token, Loc: loc}
	}
	return &ast.NameExpr{Name: token, Loc: loc}
}
