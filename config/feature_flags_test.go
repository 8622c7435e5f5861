package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeatureFlags_DefaultsEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	for _, name := range []string{
		FeatureTemplateComparison,
		FeatureTrendInsights,
		FeaturePDFExport,
		FeatureAtRiskRanking,
		FeatureResultCache,
	} {
		assert.True(t, ff.IsEnabled(name, nil), name)
	}

	// Незарегистрированный флаг всегда выключен.
	assert.False(t, ff.IsEnabled("analytics.unknown", nil))
}

func TestFeatureFlags_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FEATURE_REPORT_PDF_EXPORT", "false")
	t.Setenv("FEATURE_ANALYTICS_TEMPLATE_COMPARISON", "25")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeaturePDFExport, nil))

	features := ff.GetAllFeatures()
	assert.Equal(t, 25, features[FeatureTemplateComparison].RolloutPercent)
	assert.True(t, features[FeatureTemplateComparison].Enabled)

	// Частичная раскатка требует пользователя в контексте.
	assert.False(t, ff.IsEnabled(FeatureTemplateComparison, nil))
}

func TestFeatureNameToEnvKey(t *testing.T) {
	assert.Equal(t, "FEATURE_REPORT_PDF_EXPORT", featureNameToEnvKey("report.pdf_export"))
	assert.Equal(t, "FEATURE_CACHE_RESULTS", featureNameToEnvKey("cache.results"))
	assert.Equal(t, "FEATURE_A_B_C", featureNameToEnvKey("a.b-c"))
}

func TestFeatureFlags_RolloutIsDeterministic(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.NoError(t, ff.SetRolloutPercent(FeaturePDFExport, 50))

	ctx := &FeatureContext{UserID: "sup-42"}
	first := ff.IsEnabled(FeaturePDFExport, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeaturePDFExport, ctx))
	}

	// Нулевая раскатка выключает всех, полная включает всех.
	assert.NoError(t, ff.SetRolloutPercent(FeaturePDFExport, 0))
	assert.False(t, ff.IsEnabled(FeaturePDFExport, ctx))
	assert.NoError(t, ff.SetRolloutPercent(FeaturePDFExport, 100))
	assert.True(t, ff.IsEnabled(FeaturePDFExport, ctx))
}

func TestFeatureFlags_RolloutBucketsSplitUsers(t *testing.T) {
	// При 50% раскатке среди многих пользователей есть и попавшие,
	// и не попавшие в выборку.
	inRollout := 0
	for i := 0; i < 200; i++ {
		if isInRollout(string(rune('a'+i%26))+string(rune('0'+i%10)), FeaturePDFExport, 50) {
			inRollout++
		}
	}
	assert.Greater(t, inRollout, 0)
	assert.Less(t, inRollout, 200)
}

func TestFeatureFlags_UserOverridesTakePrecedence(t *testing.T) {
	ff := LoadFeatureFlags()

	ff.SetUserOverride("sup-1", FeaturePDFExport, false)
	assert.False(t, ff.IsEnabled(FeaturePDFExport, &FeatureContext{UserID: "sup-1"}))
	// Другие пользователи не затронуты.
	assert.True(t, ff.IsEnabled(FeaturePDFExport, &FeatureContext{UserID: "sup-2"}))

	// Переопределение работает и поверх выключенного флага.
	assert.NoError(t, ff.DisableFeature(FeaturePDFExport))
	ff.SetUserOverride("sup-1", FeaturePDFExport, true)
	assert.True(t, ff.IsEnabled(FeaturePDFExport, &FeatureContext{UserID: "sup-1"}))

	ff.ClearUserOverrides("sup-1")
	assert.False(t, ff.IsEnabled(FeaturePDFExport, &FeatureContext{UserID: "sup-1"}))
}

func TestFeatureFlags_AdminPreviewsDisabledFeature(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.NoError(t, ff.DisableFeature(FeatureAtRiskRanking))

	assert.False(t, ff.IsEnabled(FeatureAtRiskRanking, &FeatureContext{UserID: "sup-1"}))
	assert.True(t, ff.IsEnabled(FeatureAtRiskRanking, &FeatureContext{UserID: "adm-1", IsAdmin: true}))
}

func TestFeatureFlags_TimeWindow(t *testing.T) {
	ff := LoadFeatureFlags()

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	features := ff.features[FeatureTrendInsights]
	features.EnabledFrom = &future
	assert.False(t, ff.IsEnabled(FeatureTrendInsights, nil))

	features.EnabledFrom = &past
	assert.True(t, ff.IsEnabled(FeatureTrendInsights, nil))

	features.EnabledUntil = &past
	assert.False(t, ff.IsEnabled(FeatureTrendInsights, nil))
}

func TestFeatureFlags_SetRolloutPercentValidation(t *testing.T) {
	ff := LoadFeatureFlags()

	err := ff.SetRolloutPercent(FeaturePDFExport, 101)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "0-100")

	err = ff.SetRolloutPercent("analytics.unknown", 50)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown feature")
}
