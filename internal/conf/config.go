// Package conf loads and validates the catalog engine configuration.
//
// Settings is an explicit value: Load builds it once and callers pass it
// into every constructor that needs it. Nothing in this package keeps
// process-wide state.
package conf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
)

// DatabaseType selects the storage backend
type DatabaseType string

const (
	DatabaseSQLite DatabaseType = "sqlite"
	DatabaseMySQL  DatabaseType = "mysql"
)

// Settings is the complete configuration of one catalog process
type Settings struct {
	Database          DatabaseConfig          `yaml:"database" mapstructure:"database"`
	SourceAssociation SourceAssociationConfig `yaml:"source_association" mapstructure:"source_association"`
	SourceExtraction  SourceExtractionConfig  `yaml:"source_extraction" mapstructure:"source_extraction"`
	Logging           logger.LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	Metrics           MetricsConfig           `yaml:"metrics" mapstructure:"metrics"`
}

// DatabaseConfig holds storage connection settings
type DatabaseConfig struct {
	Enabled  bool         `yaml:"enabled" mapstructure:"enabled"`
	Type     DatabaseType `yaml:"type" mapstructure:"type"` // sqlite or mysql
	Path     string       `yaml:"path" mapstructure:"path"` // sqlite database file
	Host     string       `yaml:"host" mapstructure:"host"`
	Name     string       `yaml:"name" mapstructure:"name"`
	User     string       `yaml:"user" mapstructure:"user"`
	Password string       `yaml:"password" mapstructure:"password"`
	Port     int          `yaml:"port" mapstructure:"port"`
}

// SourceAssociationConfig holds association matching parameters
type SourceAssociationConfig struct {
	// DeRuiterRadius is the association threshold coefficient. The dimensionless
	// threshold applied to the De Ruiter distance is DeRuiterRadius*3600.
	DeRuiterRadius float64 `yaml:"deruiter_radius" mapstructure:"deruiter_radius"`
}

// SourceExtractionConfig holds the upstream source finder parameters.
// The engine persists them per dataset; only UnconstrainedErrorRadius is
// consumed during ingestion.
type SourceExtractionConfig struct {
	BackSizeX          int         `yaml:"back_sizex" mapstructure:"back_sizex"`
	BackSizeY          int         `yaml:"back_sizey" mapstructure:"back_sizey"`
	MedianFilter       int         `yaml:"median_filter" mapstructure:"median_filter"`
	MFThreshold        float64     `yaml:"mf_threshold" mapstructure:"mf_threshold"`
	InterpolateOrder   int         `yaml:"interpolate_order" mapstructure:"interpolate_order"`
	Margin             float64     `yaml:"margin" mapstructure:"margin"`
	MaxDegradation     float64     `yaml:"max_degradation" mapstructure:"max_degradation"`
	FDRAlpha           float64     `yaml:"fdr_alpha" mapstructure:"fdr_alpha"`
	StructuringElement [][]float64 `yaml:"structuring_element" mapstructure:"structuring_element"`
	Deblend            bool        `yaml:"deblend" mapstructure:"deblend"`
	DeblendNThresh     int         `yaml:"deblend_nthresh" mapstructure:"deblend_nthresh"`
	DeblendMinCont     float64     `yaml:"deblend_mincont" mapstructure:"deblend_mincont"`
	DetectionThreshold float64     `yaml:"detection_threshold" mapstructure:"detection_threshold"`
	AnalysisThreshold  float64     `yaml:"analysis_threshold" mapstructure:"analysis_threshold"`
	Residuals          bool        `yaml:"residuals" mapstructure:"residuals"`
	AlphaMaj1          float64     `yaml:"alpha_maj1" mapstructure:"alpha_maj1"`
	AlphaMin1          float64     `yaml:"alpha_min1" mapstructure:"alpha_min1"`
	AlphaMaj2          float64     `yaml:"alpha_maj2" mapstructure:"alpha_maj2"`
	AlphaMin2          float64     `yaml:"alpha_min2" mapstructure:"alpha_min2"`
	AlphaMaj3          float64     `yaml:"alpha_maj3" mapstructure:"alpha_maj3"`
	AlphaMin3          float64     `yaml:"alpha_min3" mapstructure:"alpha_min3"`
	CleanBias          float64     `yaml:"clean_bias" mapstructure:"clean_bias"`
	CleanBiasError     float64     `yaml:"clean_bias_error" mapstructure:"clean_bias_error"`
	FracFluxCalError   float64     `yaml:"frac_flux_cal_error" mapstructure:"frac_flux_cal_error"`
	EpsRA              float64     `yaml:"eps_ra" mapstructure:"eps_ra"`
	EpsDec             float64     `yaml:"eps_dec" mapstructure:"eps_dec"`

	// UnconstrainedErrorRadius replaces an infinite fitter error radius. It is
	// stored in the error_radius column unchanged.
	UnconstrainedErrorRadius float64 `yaml:"unconstrained_error_radius" mapstructure:"unconstrained_error_radius"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Listen  string `yaml:"listen" mapstructure:"listen"`
}

// DeRuiterThreshold returns the dimensionless association threshold.
func (s *SourceAssociationConfig) DeRuiterThreshold() float64 {
	return s.DeRuiterRadius * arcsecPerDegree
}

const arcsecPerDegree = 3600.0

// Load reads the configuration file at path, environment overrides and defaults.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Settings, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(fmt.Errorf("error reading config file: %w", err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("path", path).
				Build()
		}
	}

	return decode(v)
}

// LoadReader is Load for configuration already in memory, mostly for tests.
func LoadReader(yamlText string) (*Settings, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yamlText)); err != nil {
		return nil, errors.New(fmt.Errorf("error parsing config: %w", err)).
			Component("conf").
			Category(errors.CategoryFileParsing).
			Build()
	}
	return decode(v)
}

// Default returns the default settings.
func Default() *Settings {
	settings, err := decode(newViper())
	if err != nil {
		// defaults are static and always valid
		panic(err)
	}
	return settings
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaultConfig(v)
	bindEnvVars(v)
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	settings := &Settings{}

	// Unknown sections and options are configuration errors, never ignored.
	if err := v.UnmarshalExact(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return settings, nil
}

// SaveYAML writes settings to path as YAML.
func SaveYAML(settings *Settings, path string) error {
	data, err := settings.ToYAML()
	if err != nil {
		return err
	}
	const configFilePermissions = 0o600
	if err := os.WriteFile(path, data, configFilePermissions); err != nil {
		return errors.New(fmt.Errorf("error writing config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}
