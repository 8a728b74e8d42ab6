package roster

import (
	"strconv"

	"github.com/warp/comp-calculator/tabular"
)

// Sheet names used when writing workbooks.
const (
	TemplateSheet = "CSM Template"
	ResultsSheet  = "CSM Metrics"
)

// TemplateRecords is the example data shipped in the downloadable template.
func TemplateRecords() []Record {
	return []Record{
		{
			Name:               "John Doe",
			BookStartARR:       500000,
			MinRetentionTarget: 0.75,
			MaxRetentionTarget: 0.85,
			ChurnARR:           float64Ptr(25000),
		},
		{
			Name:               "Jane Smith",
			BookStartARR:       750000,
			MinRetentionTarget: 0.8,
			MaxRetentionTarget: 0.9,
			ChurnARR:           float64Ptr(30000),
		},
	}
}

// GenerateTemplate returns the two-row example upload.
func GenerateTemplate() tabular.Table {
	t := tabular.Table{Headers: append([]string(nil), InputColumns...)}
	for _, r := range TemplateRecords() {
		t.Rows = append(t.Rows, []string{
			r.Name,
			formatNumber(r.BookStartARR),
			formatNumber(r.MinRetentionTarget),
			formatNumber(r.MaxRetentionTarget),
			formatOptional(r.ChurnARR),
		})
	}
	return t
}

// ExportResults lays out calculated records for download. The churn,
// retention rate and attainment columns appear only if at least one record
// has churn; rows without it leave those cells empty. Values keep full
// precision.
func ExportResults(records []Record) tabular.Table {
	withChurn := false
	for _, r := range records {
		if r.ChurnARR != nil {
			withChurn = true
			break
		}
	}

	headers := []string{
		ColRepName,
		ColBookStartARR,
		ColMinRetentionTarget,
		ColMaxRetentionTarget,
		ColMaxQuarterlyChurnAllowed,
		ColQuarterlyChurnTarget,
	}
	if withChurn {
		headers = append(headers, ColChurnARR, ColRetentionRate, ColAttainment)
	}

	t := tabular.Table{Headers: headers}
	for _, r := range records {
		row := []string{
			r.Name,
			formatNumber(r.BookStartARR),
			formatNumber(r.MinRetentionTarget),
			formatNumber(r.MaxRetentionTarget),
			formatOptional(r.MaxQuarterlyChurnAllowed),
			formatOptional(r.QuarterlyChurnTarget),
		}
		if withChurn {
			row = append(row,
				formatOptional(r.ChurnARR),
				formatOptional(r.RetentionRate),
				formatOptional(r.Attainment),
			)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}
