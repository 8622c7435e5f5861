// Package http implements the REST API for the ProjectHub analytics engine.
package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Enochthedev/ProjectHub-backend-sub008/config"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/application/query"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "ProjectHub Analytics API",
		"version":     "v1",
		"description": "Progress analytics and risk engine for student milestones",
		"endpoints": map[string]string{
			"health":            "/health",
			"student_analytics": "/api/v1/students/{id}/analytics",
			"dashboard":         "/api/v1/supervisors/{id}/dashboard",
			"at_risk":           "/api/v1/supervisors/{id}/at-risk",
			"report_export":     "/api/v1/supervisors/{id}/report/export",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT ANALYTICS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStudentAnalytics handles GET /api/v1/students/{id}/analytics
func (s *Server) handleGetStudentAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentAnalyticsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Analytics handler not configured")
		return
	}

	q := query.GetStudentAnalyticsQuery{
		StudentID:  r.PathValue("id"),
		TemplateID: getQueryParam(r, "template_id", ""),
		SkipCache:  getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetStudentAnalyticsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCompareProgress handles GET /api/v1/students/{id}/comparison
func (s *Server) handleCompareProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompareProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Comparison handler not configured")
		return
	}
	if !s.deps.featureEnabled(config.FeatureTemplateComparison, r.PathValue("id")) {
		writeJSONError(w, http.StatusForbidden, "feature_disabled", "Template comparison is not enabled")
		return
	}

	q := query.CompareProgressQuery{
		StudentID:  r.PathValue("id"),
		TemplateID: getQueryParam(r, "template_id", ""),
	}

	result, err := s.deps.CompareProgressHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUPERVISOR REPORTING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSupervisorDashboard handles GET /api/v1/supervisors/{id}/dashboard
func (s *Server) handleGetSupervisorDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetSupervisorDashboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Dashboard handler not configured")
		return
	}

	q := query.GetSupervisorDashboardQuery{
		SupervisorID: r.PathValue("id"),
		SkipCache:    getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetSupervisorDashboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetProgressSummaries handles GET /api/v1/supervisors/{id}/summaries
func (s *Server) handleGetProgressSummaries(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetProgressSummariesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Summaries handler not configured")
		return
	}

	q := query.GetProgressSummariesQuery{
		SupervisorID: r.PathValue("id"),
		SkipCache:    getQueryParamBool(r, "refresh"),
	}

	summaries, err := s.deps.GetProgressSummariesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"total":     len(summaries),
	})
}

// handleGetAtRiskStudents handles GET /api/v1/supervisors/{id}/at-risk
func (s *Server) handleGetAtRiskStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetProgressSummariesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Summaries handler not configured")
		return
	}
	if !s.deps.featureEnabled(config.FeatureAtRiskRanking, r.PathValue("id")) {
		writeJSONError(w, http.StatusForbidden, "feature_disabled", "At-risk ranking is not enabled")
		return
	}

	q := query.GetProgressSummariesQuery{
		SupervisorID: r.PathValue("id"),
		SkipCache:    getQueryParamBool(r, "refresh"),
	}

	summaries, err := s.deps.GetProgressSummariesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	atRisk := make([]analytics.AtRiskStudent, 0)
	for _, summary := range summaries {
		if student, ok := analytics.AtRiskFromSummary(summary); ok {
			atRisk = append(atRisk, student)
		}
	}
	analytics.SortAtRisk(atRisk)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"at_risk_students": atRisk,
		"total":            len(atRisk),
	})
}

// handleGetStudentOverview handles
// GET /api/v1/supervisors/{id}/students/{student_id}/overview
func (s *Server) handleGetStudentOverview(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentOverviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Overview handler not configured")
		return
	}

	q := query.GetStudentOverviewQuery{
		SupervisorID: r.PathValue("id"),
		StudentID:    r.PathValue("student_id"),
	}

	result, err := s.deps.GetStudentOverviewHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleExportReport handles GET /api/v1/supervisors/{id}/report/export
//
// Query parameters: format=csv|pdf, student_ids, statuses, priorities,
// from, to (dates as 2006-01-02). The exported file is streamed as an
// attachment, not wrapped in the JSON envelope.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.ExportProgressReportHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Export handler not configured")
		return
	}

	filter, err := parseReportFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	q := query.ExportProgressReportQuery{
		SupervisorID: r.PathValue("id"),
		Format:       query.ExportFormat(getQueryParam(r, "format", "csv")),
		Filter:       filter,
	}

	if q.Format == query.FormatPDF && !s.deps.featureEnabled(config.FeaturePDFExport, q.SupervisorID) {
		writeJSONError(w, http.StatusForbidden, "feature_disabled", "PDF export is not enabled")
		return
	}

	report, err := s.deps.ExportProgressReportHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", report.Size))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Content)
}

// parseReportFilter builds a report filter from query parameters.
func parseReportFilter(r *http.Request) (analytics.ReportFilter, error) {
	var filter analytics.ReportFilter

	filter.StudentIDs = getQueryParamList(r, "student_ids")

	for _, raw := range getQueryParamList(r, "statuses") {
		status := milestone.Status(raw)
		if !status.IsValid() {
			return filter, fmt.Errorf("unknown status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	for _, raw := range getQueryParamList(r, "priorities") {
		priority := milestone.Priority(raw)
		if !priority.IsValid() {
			return filter, fmt.Errorf("unknown priority %q", raw)
		}
		filter.Priorities = append(filter.Priorities, priority)
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := timeutil.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}

	if to := r.URL.Query().Get("to"); to != "" {
		t, err := timeutil.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = timeutil.EndOfDay(t)
	}

	return filter, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsAccessDenied(err):
		writeJSONError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, shared.ErrSupervisorNotFound):
		writeJSONError(w, http.StatusNotFound, "supervisor_not_found", err.Error())
	case shared.IsNoSuitableTemplate(err):
		writeJSONError(w, http.StatusNotFound, "no_suitable_template", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
