package services

import (
	"context"

	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// ImpactFactor is one life cycle impact category factor per square meter of
// crystalline silicon module area.
type ImpactFactor struct {
	UUID   string  `json:"uuid"`
	Result float64 `json:"result"`
	Unit   string  `json:"unit"`
}

// ImpactValue is one evaluated impact category for a given module area.
type ImpactValue struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// traci21Impacts holds the TRACI 2.1 characterization factors for silicon
// photovoltaic panels, per m2 of module area.
var traci21Impacts = map[string]ImpactFactor{
	"Acidification": {
		UUID:   "75d0c8a2-e466-3bd7-813b-5beef2209330",
		Result: 1.29374135667815,
		Unit:   "kg SO2",
	},
	"Carcinogenics": {
		UUID:   "a6e5e5d8-a1e5-3c77-8170-586c4fe37514",
		Result: 0.0000231966690476102,
		Unit:   "CTUh",
	},
	"Ecotoxicity": {
		UUID:   "338e9370-ceb0-3d18-9d87-5f91feb7829c",
		Result: 5933.77859696668,
		Unit:   "CTUe",
	},
	"Eutrophication": {
		UUID:   "45b8cd56-498a-3c6f-9488-134e951d8c02",
		Result: 1.34026194777363,
		Unit:   "kg N eq",
	},
	"Fossil fuel depletion": {
		UUID:   "0e45786f-67fa-3b8a-b8a3-73a7c316434c",
		Result: 249.642261689385,
		Unit:   "MJ surplus",
	},
	"Global warming": {
		UUID:   "31967441-d687-313d-9910-13da3a584ab7",
		Result: 268.548841324818,
		Unit:   "kg CO2 eq",
	},
	"Non carcinogenics": {
		UUID:   "d4827ae3-c873-3ea4-85fb-860b7f3f2dee",
		Result: 0.000135331806321799,
		Unit:   "CTUh",
	},
	"Ozone depletion": {
		UUID:   "6c05dad1-6661-35f2-82aa-6e8e6a498aec",
		Result: 0.0000310937628622019,
		Unit:   "kg CFC-11 eq",
	},
	"Respiratory effects": {
		UUID:   "e0916d62-7fbd-3d0a-a4a5-52659b0ac9c1",
		Result: 0.373415542664206,
		Unit:   "kg PM2.5 eq",
	},
	"Smog": {
		UUID:   "7a149078-e2fd-3e07-a5a3-79035c60e7c3",
		Result: 15.35483065,
		Unit:   "kg O3 eq",
	},
}

// LCAService evaluates life cycle impact assessments for module areas
type LCAService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLCAService creates a new LCA service
func NewLCAService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LCAService {
	return &LCAService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Categories returns the impact categories and their default factors.
func (s *LCAService) Categories() map[string]ImpactFactor {
	out := make(map[string]ImpactFactor, len(traci21Impacts))
	for k, v := range traci21Impacts {
		out[k] = v
	}
	return out
}

// Evaluate scales the impact factors by the given module area in m2.
// Overrides replace the default factor of an existing category; unknown
// override keys are ignored with a warning, matching factors stay at their
// TRACI 2.1 defaults.
func (s *LCAService) Evaluate(ctx context.Context, areaM2 float64, overrides map[string]ImpactFactor) map[string]ImpactValue {
	factors := s.Categories()
	for key, factor := range overrides {
		if _, ok := factors[key]; !ok {
			s.logger.Warn(ctx, "[LCA_UNKNOWN_CATEGORY] Ignoring unknown impact category override", logging.Fields{
				"category": key,
			})
			continue
		}
		factors[key] = factor
	}

	results := make(map[string]ImpactValue, len(factors))
	for key, factor := range factors {
		results[key] = ImpactValue{
			Amount: factor.Result * areaM2,
			Unit:   factor.Unit,
		}
	}

	s.logger.Debug(ctx, "[LCA_EVALUATED] Impact assessment evaluated", logging.Fields{
		"area_m2":    areaM2,
		"categories": len(results),
		"overridden": len(overrides),
	})

	return results
}
