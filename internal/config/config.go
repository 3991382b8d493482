// Package config loads and validates the wheelsmith configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

// Config represents the application configuration
type Config struct {
	Cache        CacheConfig         `yaml:"cache"`
	Build        BuildConfig         `yaml:"build"`
	Output       OutputConfig        `yaml:"output"`
	Provenance   ProvenanceConfig    `yaml:"provenance"`
	Requirements []RequirementConfig `yaml:"requirements"`
}

// CacheConfig configures the persistent wheel cache.
type CacheConfig struct {
	// Dir is the persistent cache root. Empty disables the persistent cache;
	// all wheels are then built into the run-scoped ephemeral cache.
	Dir string `yaml:"dir,omitempty"`
}

// BuildConfig configures the build backends.
type BuildConfig struct {
	// Command is the legacy external build command.
	Command []string `yaml:"command,omitempty"`

	// CleanCommand is the best-effort clean command run after failed legacy builds.
	CleanCommand []string `yaml:"clean_command,omitempty"`

	// GlobalOptions are passed to every legacy build and clean invocation.
	GlobalOptions []string `yaml:"global_options,omitempty"`

	// BuildOptions are free-form legacy build options. Incompatible with the
	// modern protocol.
	BuildOptions []string `yaml:"build_options,omitempty"`

	// InterpreterTag overrides the python tag of wheels built for
	// installation (e.g. "cp312").
	InterpreterTag string `yaml:"interpreter_tag,omitempty"`
}

// OutputConfig configures where run outputs land.
type OutputConfig struct {
	// WheelDir is the wheel output directory for `wheelsmith wheel` runs.
	WheelDir string `yaml:"wheel_dir,omitempty"`
}

// ProvenanceConfig configures build provenance persistence.
type ProvenanceConfig struct {
	// Database is the SQLite database path. Empty disables provenance records.
	Database string `yaml:"database,omitempty"`
}

// RequirementConfig describes one requirement of the batch.
type RequirementConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url,omitempty"`
	SourceDir   string `yaml:"source_dir,omitempty"`
	Editable    bool   `yaml:"editable,omitempty"`
	Constraint  bool   `yaml:"constraint,omitempty"`
	Protocol    string `yaml:"protocol,omitempty"` // "legacy" (default) or "modern"
	MetadataDir string `yaml:"metadata_dir,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; missing files are fine.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.New(errors.CategoryConfig, errors.SeverityFatal,
			fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - path comes from the CLI flag
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "read config file")
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "unmarshal config")
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if len(c.Build.Command) == 0 {
		c.Build.Command = []string{"python", "setup.py", "bdist_wheel"}
	}
	if len(c.Build.CleanCommand) == 0 {
		c.Build.CleanCommand = []string{"python", "setup.py", "clean", "--all"}
	}
	for i := range c.Requirements {
		if c.Requirements[i].Protocol == "" {
			c.Requirements[i].Protocol = string(requirement.ProtocolLegacy)
		}
	}
}

// Validate checks requirement entries for contradictions the orchestrator
// cannot recover from.
func (c *Config) Validate() error {
	for i, rc := range c.Requirements {
		if rc.Name == "" {
			return errors.New(errors.CategoryValidation, errors.SeverityFatal,
				fmt.Sprintf("requirement %d has no name", i))
		}
		if rc.URL == "" && rc.SourceDir == "" {
			return errors.New(errors.CategoryValidation, errors.SeverityFatal,
				fmt.Sprintf("requirement %s has neither url nor source_dir", rc.Name))
		}
		switch requirement.Protocol(rc.Protocol) {
		case requirement.ProtocolLegacy, requirement.ProtocolModern:
		default:
			return errors.New(errors.CategoryValidation, errors.SeverityFatal,
				fmt.Sprintf("requirement %s has unknown protocol %q", rc.Name, rc.Protocol))
		}
		if requirement.Protocol(rc.Protocol) == requirement.ProtocolModern && rc.MetadataDir == "" {
			return errors.New(errors.CategoryValidation, errors.SeverityFatal,
				fmt.Sprintf("modern-protocol requirement %s needs metadata_dir", rc.Name))
		}
	}
	return nil
}

// ToRequirement converts a config entry into the requirement model.
func (rc RequirementConfig) ToRequirement() (*requirement.Requirement, error) {
	req := &requirement.Requirement{
		Name:        rc.Name,
		SourceDir:   rc.SourceDir,
		Editable:    rc.Editable,
		Constraint:  rc.Constraint,
		Protocol:    requirement.Protocol(rc.Protocol),
		MetadataDir: rc.MetadataDir,
	}
	if rc.URL != "" {
		link, err := requirement.NewLink(rc.URL)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, errors.SeverityFatal,
				fmt.Sprintf("requirement %s has an invalid url", rc.Name))
		}
		req.Link = link
	}
	return req, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Cache: CacheConfig{Dir: "~/.cache/wheelsmith"},
		Build: BuildConfig{
			Command:      []string{"python", "setup.py", "bdist_wheel"},
			CleanCommand: []string{"python", "setup.py", "clean", "--all"},
		},
		Output: OutputConfig{WheelDir: "./wheels"},
		Requirements: []RequirementConfig{
			{
				Name:      "simplewheel",
				URL:       "https://files.example.com/simplewheel-1.0.tar.gz",
				SourceDir: "./src/simplewheel",
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
