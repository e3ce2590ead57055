package seeding

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

type AccountFixture struct {
	Key       string `yaml:"key"`
	Email     string `yaml:"email"`
	Username  string `yaml:"username"`
	Role      string `yaml:"role"`
	CreatedBy string `yaml:"created_by"`
}

type OccupantFixture struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type UnitFixture struct {
	Number   string           `yaml:"number"`
	Occupant *OccupantFixture `yaml:"occupant"`
}

type ComponentFixture struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	SubCategory string `yaml:"sub_category"`
	Brand       string `yaml:"brand"`
	Unit        string `yaml:"unit"`
}

type BuildingFixture struct {
	Key        string             `yaml:"key"`
	Name       string             `yaml:"name"`
	Address    string             `yaml:"address"`
	CreatedBy  string             `yaml:"created_by"`
	Units      []UnitFixture      `yaml:"units"`
	Components []ComponentFixture `yaml:"components"`
}

type ProviderFixture struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Specialty string `yaml:"specialty"`
	Phone     string `yaml:"phone"`
	Login     string `yaml:"login"`
	CreatedBy string `yaml:"created_by"`
}

type TaskFixture struct {
	Name       string `yaml:"name"`
	Building   string `yaml:"building"`
	Component  string `yaml:"component"`
	Specialty  string `yaml:"specialty"`
	Recurrence string `yaml:"recurrence"`
	TaskDate   string `yaml:"task_date"`
	StartDate  string `yaml:"start_date"`
	EndDate    string `yaml:"end_date"`
}

// Fixture is a declarative demo data set. References between records use
// the fixture keys; "superadmin" names the seeded root account.
type Fixture struct {
	Accounts  []AccountFixture  `yaml:"accounts"`
	Buildings []BuildingFixture `yaml:"buildings"`
	Providers []ProviderFixture `yaml:"providers"`
	Tasks     []TaskFixture     `yaml:"tasks"`
}

// LoadDemoFixture parses the embedded demo data.
func LoadDemoFixture() (*Fixture, error) {
	return ParseFixture(demoFixture)
}

func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}
