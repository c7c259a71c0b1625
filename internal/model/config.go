package model

// DatasetConfig declares which raw-file checks run on a dataset and how
// failures are handled. Path is either a single file or a directory of CSVs.
type DatasetConfig struct {
	Validations map[string]Strategy `mapstructure:"validations" validate:"dive,keys,required,endkeys,oneof=fix ignore"`
	Path        string              `mapstructure:"path" validate:"required"`
}

// DataValidationConfig is the top-level raw validation configuration.
type DataValidationConfig struct {
	Datasets            map[string]DatasetConfig `mapstructure:"datasets" validate:"dive"`
	Encoding            string                   `mapstructure:"encoding" validate:"required"`
	Workers             int                      `mapstructure:"workers" validate:"gte=0"`
	Enabled             bool                     `mapstructure:"enabled"`
	ReportIncludePassed bool                     `mapstructure:"report_include_passed"`
}

// TableCheckConfig declares one post-parse table validation. Only the fields
// relevant to Name are read.
type TableCheckConfig struct {
	Lower            *string  `mapstructure:"lower"`
	Upper            *string  `mapstructure:"upper"`
	Name             string   `mapstructure:"name" validate:"required"`
	Column           string   `mapstructure:"column"`
	IdentifierColumn string   `mapstructure:"identifier_column"`
	TimeColumn       string   `mapstructure:"time_column"`
	GroupColumn      string   `mapstructure:"group_column"`
	DateFormat       string   `mapstructure:"date_format"`
	Columns          []string `mapstructure:"columns"`
	Allowed          []string `mapstructure:"allowed"`
}

// TableDatasetConfig binds a parsed output file to its table validations.
type TableDatasetConfig struct {
	Path   string             `mapstructure:"path" validate:"required"`
	Checks []TableCheckConfig `mapstructure:"checks" validate:"dive"`
}

// TableValidationConfig is the top-level table validation configuration.
type TableValidationConfig struct {
	Datasets            map[string]TableDatasetConfig `mapstructure:"datasets" validate:"dive"`
	ReportIncludePassed bool                          `mapstructure:"report_include_passed"`
}
