package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poorman/TaskFlow/internal/models"
)

// AnalyticsAPI covers /api/v1/analytics. All of it is read-only.
type AnalyticsAPI struct {
	c *Client
}

// Dashboard fetches the aggregate metrics for the trailing window.
// days <= 0 uses the server default of 30.
func (a AnalyticsAPI) Dashboard(ctx context.Context, days int) (*models.Analytics, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var analytics models.Analytics
	if err := a.c.do(ctx, http.MethodGet, "/api/v1/analytics/dashboard", query, nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// TimeSeries fetches per-day created/completed counts.
func (a AnalyticsAPI) TimeSeries(ctx context.Context, days int) ([]models.TimeSeriesPoint, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var points []models.TimeSeriesPoint
	if err := a.c.do(ctx, http.MethodGet, "/api/v1/analytics/timeseries", query, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}
