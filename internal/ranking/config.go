package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights defines how the three feed sub-scores combine into the composite
// relevance score. The defaults sum to 1.0.
type Weights struct {
	Location   float64 `json:"location"`   // Weight for geographic proximity (default: 0.4)
	Popularity float64 `json:"popularity"` // Weight for vote popularity (default: 0.4)
	Recency    float64 `json:"recency"`    // Weight for report age (default: 0.2)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight overrides
}

// DefaultWeights returns the default feed weight configuration.
//
// Formula: composite = (location * 0.4) + (popularity * 0.4) + (recency * 0.2)
//   - Location and popularity carry equal weight: a civic alert matters most
//     when it is close by and corroborated by other users.
//   - Recency breaks ties toward same-day reports without letting a stale,
//     heavily-voted post pin itself to the top.
func DefaultWeights() *Weights {
	return &Weights{
		Location:   0.4,
		Popularity: 0.4,
		Recency:    0.2,
	}
}

// LoadCalibration loads feed weights from a JSON calibration file.
// An empty path returns the defaults. On read or parse failure it returns
// the defaults alongside the error so the feed degrades gracefully.
// Partial configurations are merged with defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights into base weights. Only non-zero
// override values are applied, allowing partial calibration files.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Location != 0 {
		result.Location = override.Location
	}
	if override.Popularity != 0 {
		result.Popularity = override.Popularity
	}
	if override.Recency != 0 {
		result.Recency = override.Recency
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.Location != defaults.Location {
		overrides = append(overrides, fmt.Sprintf("location: %.2f -> %.2f",
			defaults.Location, loaded.Location))
	}
	if loaded.Popularity != defaults.Popularity {
		overrides = append(overrides, fmt.Sprintf("popularity: %.2f -> %.2f",
			defaults.Popularity, loaded.Popularity))
	}
	if loaded.Recency != defaults.Recency {
		overrides = append(overrides, fmt.Sprintf("recency: %.2f -> %.2f",
			defaults.Recency, loaded.Recency))
	}

	if len(overrides) > 0 {
		slog.Info("loaded feed calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded feed calibration (using all defaults)")
	}
}
