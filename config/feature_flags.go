package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for the analytics engine.
// Supports gradual rollout per user and time-based activation, so
// heavier analytics can be enabled for a slice of supervisors first.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  string // supervisor or student ID
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Analytics Features ===
	FeatureTemplateComparison = "analytics.template_comparison" // compare progress against templates
	FeatureTrendInsights      = "analytics.trend_insights"      // textual insights in trend analysis

	// === Reporting Features ===
	FeaturePDFExport     = "report.pdf_export"      // PDF report export
	FeatureAtRiskRanking = "report.at_risk_ranking" // at-risk student ranking endpoint

	// === Infrastructure Features ===
	FeatureResultCache = "cache.results" // cache computed analytics in Redis
)

// LoadFeatureFlags creates feature flags with defaults, then applies
// environment overrides (FEATURE_<NAME>=true/false or a percent).
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []*Feature{
		{
			Name:           FeatureTemplateComparison,
			Description:    "Compare student progress against milestone templates",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureTrendInsights,
			Description:    "Generate textual insights from trend analysis",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeaturePDFExport,
			Description:    "Export supervisor reports as PDF",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureAtRiskRanking,
			Description:    "Rank at-risk students by urgency",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureResultCache,
			Description:    "Cache computed analytics in Redis",
			Enabled:        true,
			RolloutPercent: 100,
		},
	}

	for _, f := range defaults {
		ff.features[f.Name] = f
	}
}

// loadFromEnvironment applies env overrides.
// FEATURE_REPORT_PDF_EXPORT=false disables, =25 sets rollout percent.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			continue
		}

		if percent, err := strconv.Atoi(val); err == nil && percent >= 0 && percent <= 100 {
			feature.Enabled = percent > 0
			feature.RolloutPercent = percent
		}
	}
}

// featureNameToEnvKey converts "report.pdf_export" to "FEATURE_REPORT_PDF_EXPORT".
func featureNameToEnvKey(name string) string {
	key := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return "FEATURE_" + strings.ToUpper(key)
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// User overrides take precedence
	if ctx != nil && ctx.UserID != "" {
		if overrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		// Admins can preview disabled features
		return ctx != nil && ctx.IsAdmin
	}

	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	if feature.RolloutPercent < 100 {
		if ctx == nil || ctx.UserID == "" {
			return false
		}
		return isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return true
}

// isInRollout deterministically assigns a user to a rollout bucket.
func isInRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID + ":" + featureName))
	return int(h.Sum32()%100) < percent
}

// SetUserOverride forces a feature on or off for a specific user.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.userOverrides[userID] == nil {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	if percent < 0 || percent > 100 {
		return &FeatureFlagError{Feature: featureName, Message: "rollout percent must be 0-100"}
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return &FeatureFlagError{Feature: featureName, Message: "unknown feature"}
	}

	feature.RolloutPercent = percent
	return nil
}

// EnableFeature turns a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.setEnabled(featureName, true)
}

// DisableFeature turns a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.setEnabled(featureName, false)
}

func (ff *FeatureFlags) setEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return &FeatureFlagError{Feature: featureName, Message: "unknown feature"}
	}

	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of all registered features.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for name, f := range ff.features {
		copied := *f
		result[name] = &copied
	}
	return result
}

// FeatureFlagError describes a feature flag operation failure.
type FeatureFlagError struct {
	Feature string
	Message string
}

func (e *FeatureFlagError) Error() string {
	return "feature flag " + e.Feature + ": " + e.Message
}
