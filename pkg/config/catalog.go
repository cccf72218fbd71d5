package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DefaultSalary applies to positions missing from the salary table.
const DefaultSalary = 50000.0

// Catalog holds the department/position structure and the monthly salary per position.
// It is built once at start and passed by value.
type Catalog struct {
	DepartmentPositions map[string][]string
	PositionSalaries    map[string]float64
	DefaultSalary       float64
}

// catalogFile is the on-disk layout. Lists are used instead of maps because viper folds map
// keys to lower case.
type catalogFile struct {
	Departments []struct {
		Name      string   `mapstructure:"name"`
		Positions []string `mapstructure:"positions"`
	} `mapstructure:"departments"`
	Salaries []struct {
		Position string  `mapstructure:"position"`
		Amount   float64 `mapstructure:"amount"`
	} `mapstructure:"salaries"`
	DefaultSalary float64 `mapstructure:"default_salary"`
}

// DefaultCatalog returns the built-in tables.
func DefaultCatalog() Catalog {
	return Catalog{
		DepartmentPositions: map[string][]string{
			"IT":         {"Software Developer", "System Administrator", "IT Support", "DevOps Engineer"},
			"HR":         {"HR Manager", "Recruiter", "HR Assistant", "Training Coordinator"},
			"Finance":    {"Accountant", "Financial Analyst", "Finance Manager", "Auditor"},
			"Marketing":  {"Marketing Manager", "Content Creator", "Digital Marketer", "Brand Manager"},
			"Operations": {"Operations Manager", "Project Manager", "Business Analyst", "Quality Assurance"},
		},
		PositionSalaries: map[string]float64{
			"Software Developer":   75000,
			"System Administrator": 70000,
			"IT Support":           45000,
			"DevOps Engineer":      85000,
			"HR Manager":           80000,
			"Recruiter":            55000,
			"HR Assistant":         40000,
			"Training Coordinator": 50000,
			"Accountant":           60000,
			"Financial Analyst":    65000,
			"Finance Manager":      90000,
			"Auditor":              70000,
			"Marketing Manager":    75000,
			"Content Creator":      50000,
			"Digital Marketer":     55000,
			"Brand Manager":        70000,
			"Operations Manager":   85000,
			"Project Manager":      80000,
			"Business Analyst":     65000,
			"Quality Assurance":    55000,
		},
		DefaultSalary: DefaultSalary,
	}
}

// LoadCatalog reads a catalog override (json, yaml or toml) from path. An empty path yields
// the built-in tables.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var raw catalogFile
	if err := v.Unmarshal(&raw); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if len(raw.Departments) == 0 {
		return Catalog{}, fmt.Errorf("catalog %s: no departments defined", path)
	}

	catalog := Catalog{
		DepartmentPositions: make(map[string][]string, len(raw.Departments)),
		PositionSalaries:    make(map[string]float64, len(raw.Salaries)),
		DefaultSalary:       raw.DefaultSalary,
	}
	for _, d := range raw.Departments {
		catalog.DepartmentPositions[d.Name] = d.Positions
	}
	for _, s := range raw.Salaries {
		catalog.PositionSalaries[s.Position] = s.Amount
	}
	if catalog.DefaultSalary <= 0 {
		catalog.DefaultSalary = DefaultSalary
	}
	return catalog, nil
}

// SalaryFor returns the salary for position, falling back to the default salary.
func (c Catalog) SalaryFor(position string) float64 {
	if salary, ok := c.PositionSalaries[position]; ok {
		return salary
	}
	return c.DefaultSalary
}

// KnownPosition reports whether position has a salary entry.
func (c Catalog) KnownPosition(position string) bool {
	_, ok := c.PositionSalaries[position]
	return ok
}

// Departments returns department names in sorted order.
func (c Catalog) Departments() []string {
	names := make([]string, 0, len(c.DepartmentPositions))
	for name := range c.DepartmentPositions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Positions returns a copy of the positions for department.
func (c Catalog) Positions(department string) ([]string, bool) {
	positions, ok := c.DepartmentPositions[department]
	if !ok {
		return nil, false
	}
	out := make([]string, len(positions))
	copy(out, positions)
	return out, true
}
