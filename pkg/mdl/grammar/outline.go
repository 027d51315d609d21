package grammar

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
)

// Summary describes a single node on one line, without its children.
func Summary(n Node) string {
	switch tn := n.(type) {
	case *TimePeriodEvents:
		return fmt.Sprintf("time_period_events (storage_key: %s, period_days: %s)", tn.StorageKey, tn.PeriodDays)
	case *Pref:
		return fmt.Sprintf("pref (pref_name: %s)", tn.PrefName)
	case *Probe:
		if len(tn.Filter) > 0 {
			return fmt.Sprintf("probe (histogram_name: %s, filter: %s)", tn.HistogramName, joinDecimals(tn.Filter))
		}
		return fmt.Sprintf("probe (histogram_name: %s)", tn.HistogramName)
	case *Bucket:
		return fmt.Sprintf("bucket (buckets: %s)", joinDecimals(tn.Buckets))
	case *ValueMap:
		return fmt.Sprintf("value_map (%d entries)", tn.Map.Len())
	case *Percentage:
		if tn.Multiplier != nil {
			return fmt.Sprintf("percentage (multiplier: %s)", tn.Multiplier)
		}
		return "percentage"
	case *FlatTimePeriodEvents:
		return fmt.Sprintf("time_period_events (histogram_name: %s, storage_key: %s, period_days: %s, buckets: %s)",
			tn.HistogramName, tn.StorageKey, tn.PeriodDays, joinDecimals(tn.Buckets))
	case *FlatPref:
		return fmt.Sprintf("pref (pref_name: %s, %d mapped values)", tn.PrefName, tn.ValueMap.Len())
	default:
		return fmt.Sprintf("%T", n)
	}
}

// Outline renders the definition as an indented tree, one node per line,
// each child prefixed with the field that holds it.
func Outline(def *Definition) string {
	if def == nil || def.Node == nil {
		return ""
	}

	var sb strings.Builder
	if def.MinVersion != nil {
		sb.WriteString(fmt.Sprintf("min_version: %s\n", *def.MinVersion))
	}

	_ = Walk(def.Node, VisitorFunc(func(n Node, path mdlErrors.Path) error {
		depth := 0
		label := ""
		for i, seg := range path {
			if !seg.IsIndex {
				depth++
				label = seg.Key
			} else if i == len(path)-1 {
				label = fmt.Sprintf("%s[%d]", label, seg.Index)
			}
		}
		sb.WriteString(strings.Repeat("  ", depth))
		if label != "" {
			sb.WriteString(label + ": ")
		}
		sb.WriteString(Summary(n))
		sb.WriteString("\n")
		return nil
	}))

	return sb.String()
}

func joinDecimals(ds []*apd.Decimal) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
