package genome

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/appforge/cli/internal/errors"
)

// DefaultFileName is the genome file looked up when no --genome flag is given.
const DefaultFileName = "genome.yaml"

// Load reads and validates a genome file, returning the first problem found.
func Load(path string) (*Genome, error) {
	g, errs := LoadAll(path)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return g, nil
}

// LoadAll reads a genome file and collects every problem found instead of
// stopping at the first: an unreadable or unparsable file is a single error,
// a parsable one is validated in full. The genome is returned alongside its
// validation errors so callers can keep inspecting it.
func LoadAll(path string) (*Genome, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{errors.NewNotFoundError(
				fmt.Sprintf("genome file %s does not exist", path),
				path,
				"Run the command from a directory containing genome.yaml, or pass --genome.",
			)}
		}
		return nil, []error{fmt.Errorf("reading genome file: %w", err)}
	}

	var g Genome
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, []error{errors.NewValidationError(
			fmt.Sprintf("genome file is not valid YAML: %v", err),
			path,
			"",
			"Check indentation and quoting in the genome file.",
		)}
	}

	return &g, ValidateAll(&g)
}

// Validate checks genome well-formedness: required fields and internal
// references. It returns the first structural error encountered; use
// ValidateAll for the aggregated report.
func Validate(g *Genome) error {
	errs := ValidateAll(g)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateAll collects every well-formedness problem in the genome.
func ValidateAll(g *Genome) []error {
	var errs []error

	if g.Project.Name == "" {
		errs = append(errs, errors.NewValidationError(
			"project.name is required",
			"",
			"project.name",
			"Set project.name in the genome file.",
		))
	}

	for name, pkg := range g.Packages {
		if pkg.From == "" {
			errs = append(errs, errors.NewValidationError(
				fmt.Sprintf("package %q does not name its marketplace", name),
				"",
				fmt.Sprintf("packages.%s.from", name),
				"Set from: <marketplace> on the package.",
			))
			continue
		}
		if _, ok := g.Marketplaces[pkg.From]; !ok {
			errs = append(errs, errors.NewValidationError(
				fmt.Sprintf("package %q references undeclared marketplace %q", name, pkg.From),
				"",
				fmt.Sprintf("packages.%s.from", name),
				"Declare the marketplace under marketplaces, or fix the reference.",
			))
		}
	}

	for appName, app := range g.Apps {
		for _, dep := range app.Dependencies {
			if _, ok := g.Packages[dep]; !ok {
				errs = append(errs, errors.NewValidationError(
					fmt.Sprintf("app %q depends on undeclared package %q", appName, dep),
					"",
					fmt.Sprintf("apps.%s.dependencies", appName),
					"Declare the package under packages, or drop the dependency.",
				))
			}
		}
	}

	for name, mp := range g.Marketplaces {
		switch mp.Type {
		case "local":
			if mp.Path == "" {
				errs = append(errs, errors.NewValidationError(
					fmt.Sprintf("local marketplace %q needs a path", name),
					"",
					fmt.Sprintf("marketplaces.%s.path", name),
					"Set path: <dir> on the marketplace.",
				))
			}
		case "git", "oci":
			if mp.URL == "" {
				errs = append(errs, errors.NewValidationError(
					fmt.Sprintf("%s marketplace %q needs a url", mp.Type, name),
					"",
					fmt.Sprintf("marketplaces.%s.url", name),
					"Set url: <location> on the marketplace.",
				))
			}
		case "":
			errs = append(errs, errors.NewValidationError(
				fmt.Sprintf("marketplace %q does not declare its type", name),
				"",
				fmt.Sprintf("marketplaces.%s.type", name),
				"Set type to local, git, or oci.",
			))
		default:
			errs = append(errs, errors.NewValidationError(
				fmt.Sprintf("marketplace %q has unsupported type %q", name, mp.Type),
				"",
				fmt.Sprintf("marketplaces.%s.type", name),
				"Supported types: local, git, oci.",
			))
		}
	}

	return errs
}

// ProjectRoot returns the directory the project materializes into, resolved
// against the genome file's directory when the declared path is relative.
func ProjectRoot(g *Genome, genomePath string) string {
	root := g.Project.Path
	if root == "" {
		root = g.Project.Name
	}
	if filepath.IsAbs(root) {
		return root
	}
	return filepath.Join(filepath.Dir(genomePath), root)
}
