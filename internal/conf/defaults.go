package conf

import "github.com/spf13/viper"

// Default values of the reference deployment.
const (
	DefaultDeRuiterRadius           = 0.0010325
	DefaultUnconstrainedErrorRadius = 360.0
)

// DefaultStructuringElement is the 4-connected cross used by the source finder.
var DefaultStructuringElement = [][]float64{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}}

// setDefaultConfig registers default values on v.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.type", string(DatabaseSQLite))
	v.SetDefault("database.path", "tkpcat.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.name", "tkp")
	v.SetDefault("database.user", "tkp")
	v.SetDefault("database.password", "tkp")
	v.SetDefault("database.port", 3306)

	v.SetDefault("source_association.deruiter_radius", DefaultDeRuiterRadius)

	v.SetDefault("source_extraction.back_sizex", 32)
	v.SetDefault("source_extraction.back_sizey", 32)
	v.SetDefault("source_extraction.median_filter", 0)
	v.SetDefault("source_extraction.mf_threshold", 0.0)
	v.SetDefault("source_extraction.interpolate_order", 1)
	v.SetDefault("source_extraction.margin", 0.0)
	v.SetDefault("source_extraction.max_degradation", 0.2)
	v.SetDefault("source_extraction.fdr_alpha", 1e-2)
	v.SetDefault("source_extraction.structuring_element", DefaultStructuringElement)
	v.SetDefault("source_extraction.deblend", false)
	v.SetDefault("source_extraction.deblend_nthresh", 32)
	v.SetDefault("source_extraction.deblend_mincont", 0.005)
	v.SetDefault("source_extraction.detection_threshold", 10.0)
	v.SetDefault("source_extraction.analysis_threshold", 3.0)
	v.SetDefault("source_extraction.residuals", true)
	v.SetDefault("source_extraction.alpha_maj1", 2.5)
	v.SetDefault("source_extraction.alpha_min1", 0.5)
	v.SetDefault("source_extraction.alpha_maj2", 0.5)
	v.SetDefault("source_extraction.alpha_min2", 2.5)
	v.SetDefault("source_extraction.alpha_maj3", 1.5)
	v.SetDefault("source_extraction.alpha_min3", 1.5)
	v.SetDefault("source_extraction.clean_bias", 0.0)
	v.SetDefault("source_extraction.clean_bias_error", 0.0)
	v.SetDefault("source_extraction.frac_flux_cal_error", 0.0)
	v.SetDefault("source_extraction.eps_ra", 0.0)
	v.SetDefault("source_extraction.eps_dec", 0.0)
	v.SetDefault("source_extraction.unconstrained_error_radius", DefaultUnconstrainedErrorRadius)

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "UTC")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/tkpcat.log")
	v.SetDefault("logging.file_output.level", "debug")
	v.SetDefault("logging.module_levels", map[string]string{})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
}
