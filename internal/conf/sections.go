package conf

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sections exports the run parameters as the nested section/key mapping
// persisted per dataset. Logging and metrics settings belong to the process,
// not to the run, and are left out. Values are string, int, float64 or bool;
// the structuring element is rendered with FormatMatrix.
func (s *Settings) Sections() map[string]map[string]any {
	db := s.Database
	sa := s.SourceAssociation
	se := s.SourceExtraction

	return map[string]map[string]any{
		"database": {
			"enabled":  db.Enabled,
			"type":     string(db.Type),
			"host":     db.Host,
			"name":     db.Name,
			"user":     db.User,
			"password": db.Password,
			"port":     db.Port,
		},
		"source_association": {
			"deruiter_radius": sa.DeRuiterRadius,
		},
		"source_extraction": {
			"back_sizex":                 se.BackSizeX,
			"back_sizey":                 se.BackSizeY,
			"median_filter":              se.MedianFilter,
			"mf_threshold":               se.MFThreshold,
			"interpolate_order":          se.InterpolateOrder,
			"margin":                     se.Margin,
			"max_degradation":            se.MaxDegradation,
			"fdr_alpha":                  se.FDRAlpha,
			"structuring_element":        FormatMatrix(se.StructuringElement),
			"deblend":                    se.Deblend,
			"deblend_nthresh":            se.DeblendNThresh,
			"deblend_mincont":            se.DeblendMinCont,
			"detection_threshold":        se.DetectionThreshold,
			"analysis_threshold":         se.AnalysisThreshold,
			"residuals":                  se.Residuals,
			"alpha_maj1":                 se.AlphaMaj1,
			"alpha_min1":                 se.AlphaMin1,
			"alpha_maj2":                 se.AlphaMaj2,
			"alpha_min2":                 se.AlphaMin2,
			"alpha_maj3":                 se.AlphaMaj3,
			"alpha_min3":                 se.AlphaMin3,
			"clean_bias":                 se.CleanBias,
			"clean_bias_error":           se.CleanBiasError,
			"frac_flux_cal_error":        se.FracFluxCalError,
			"eps_ra":                     se.EpsRA,
			"eps_dec":                    se.EpsDec,
			"unconstrained_error_radius": se.UnconstrainedErrorRadius,
		},
	}
}

// FormatMatrix renders a matrix as [[a, b], [c, d]].
func FormatMatrix(m [][]float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, row := range m {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseMatrix is the inverse of FormatMatrix. The text is a YAML flow sequence.
func ParseMatrix(text string) ([][]float64, error) {
	var m [][]float64
	if err := yaml.Unmarshal([]byte(text), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ToYAML renders the settings as a YAML document.
func (s *Settings) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}
