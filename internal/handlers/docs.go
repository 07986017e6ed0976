package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the RiceProtek API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	paginationParams := []map[string]interface{}{
		{
			"name":        "page",
			"in":          "query",
			"description": "Page number (default: 1)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "integer", "default": 1},
		},
		{
			"name":        "limit",
			"in":          "query",
			"description": "Records per page (default: 100)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "integer", "default": 100},
		},
	}

	dateRangeParams := []map[string]interface{}{
		{
			"name":        "start_date",
			"in":          "query",
			"description": "Filter by start date (YYYY-MM-DD)",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
		{
			"name":        "end_date",
			"in":          "query",
			"description": "Filter by end date (YYYY-MM-DD)",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
	}

	areaPointParam := map[string]interface{}{
		"name":        "area_point_id",
		"in":          "query",
		"description": "Filter by area point identifier",
		"required":    false,
		"schema":      map[string]string{"type": "string"},
	}

	okResponse := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"200": map[string]interface{}{"description": description},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "RiceProtek Monitoring API",
			"description": "Rice field pest and environmental monitoring platform with PostgreSQL, dataset ingestion, and NASA POWER integration",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "RiceProtek Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/area-points": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List area points",
					"description": "Retrieve monitoring sites with pagination",
					"parameters": append([]map[string]interface{}{
						{
							"name":        "is_active",
							"in":          "query",
							"description": "Filter by active flag",
							"required":    false,
							"schema":      map[string]string{"type": "boolean"},
						},
					}, paginationParams...),
					"responses": okResponse("Paginated list of area points"),
				},
				"post": map[string]interface{}{
					"summary":     "Create area point",
					"description": "Register a new monitoring site",
					"responses": map[string]interface{}{
						"201": map[string]interface{}{"description": "Area point created"},
						"400": map[string]interface{}{"description": "Validation failure"},
						"409": map[string]interface{}{"description": "Area point already exists"},
					},
				},
			},
			"/api/area-points/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Get area point",
					"responses": okResponse("Area point details"),
				},
				"put": map[string]interface{}{
					"summary":   "Update area point",
					"responses": okResponse("Area point updated"),
				},
				"delete": map[string]interface{}{
					"summary":     "Deactivate area point",
					"description": "Soft-delete a site; historical records remain",
					"responses": map[string]interface{}{
						"204": map[string]interface{}{"description": "Area point deactivated"},
					},
				},
			},
			"/api/environmental": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List environmental records",
					"description": "Retrieve daily readings with filtering and pagination",
					"parameters": append(append([]map[string]interface{}{
						areaPointParam,
						{
							"name":        "source",
							"in":          "query",
							"description": "Filter by source (nasa_power, microclimate, manual)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					}, dateRangeParams...), paginationParams...),
					"responses": okResponse("Paginated list of environmental records"),
				},
				"post": map[string]interface{}{
					"summary": "Create environmental record",
					"responses": map[string]interface{}{
						"201": map[string]interface{}{"description": "Record created"},
						"409": map[string]interface{}{"description": "Duplicate (area point, date, source)"},
						"422": map[string]interface{}{"description": "Area point missing or inactive"},
					},
				},
			},
			"/api/pests": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List pest observations",
					"description": "Retrieve pest sightings with filtering and pagination",
					"parameters": append(append([]map[string]interface{}{
						areaPointParam,
						{
							"name":        "pest_type",
							"in":          "query",
							"description": "Filter by pest type (rbb, wsb)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					}, dateRangeParams...), paginationParams...),
					"responses": okResponse("Paginated list of pest observations"),
				},
				"post": map[string]interface{}{
					"summary": "Create pest observation",
					"responses": map[string]interface{}{
						"201": map[string]interface{}{"description": "Observation created"},
						"422": map[string]interface{}{"description": "Area point missing or inactive"},
					},
				},
			},
			"/api/pests/{id}": map[string]interface{}{
				"put": map[string]interface{}{
					"summary":   "Update pest observation",
					"responses": okResponse("Observation updated"),
				},
				"delete": map[string]interface{}{
					"summary": "Delete pest observation",
					"responses": map[string]interface{}{
						"204": map[string]interface{}{"description": "Observation deleted"},
					},
				},
			},
			"/api/uploads": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "List dataset uploads",
					"parameters": append([]map[string]interface{}{areaPointParam}, paginationParams...),
					"responses":  okResponse("Paginated list of uploads"),
				},
				"post": map[string]interface{}{
					"summary":     "Upload dataset",
					"description": "Ingest a CSV dataset for one area point: rows are split into environmental, pest, and metadata domains, validated row by row, and persisted with per-row accounting",
					"requestBody": map[string]interface{}{
						"content": map[string]interface{}{
							"multipart/form-data": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"file":          map[string]string{"type": "string", "format": "binary"},
										"area_point_id": map[string]string{"type": "string"},
									},
									"required": []string{"file", "area_point_id"},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{"description": "Ingestion completed with per-domain accounting"},
						"422": map[string]interface{}{"description": "Area point missing or inactive; nothing written"},
					},
				},
			},
			"/api/nasa-sync": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Sync NASA POWER data",
					"description": "Fetch satellite-derived daily weather for an area point and store it as environmental records",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Sync completed"},
						"502": map[string]interface{}{"description": "NASA POWER API unreachable"},
					},
				},
			},
			"/api/activity": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "List activity log",
					"responses": okResponse("Most recent activity log entries"),
				},
			},
			"/api/stats/pests": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Pest summary statistics",
					"description": "Totals, averages, and peaks per pest type",
					"parameters":  append([]map[string]interface{}{areaPointParam}, dateRangeParams...),
					"responses":   okResponse("Pest summary"),
				},
			},
			"/api/stats/temporal": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Temporal aggregates",
					"description": "Pest counts joined with average environmental conditions, grouped by month or year",
					"parameters": []map[string]interface{}{
						areaPointParam,
						{
							"name":        "group_by",
							"in":          "query",
							"description": "Grouping period: month or year (default: month)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": okResponse("Temporal aggregates"),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check API and storage backend health",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "API is healthy"},
						"503": map[string]interface{}{"description": "Storage backend unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Prometheus metrics in text format"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
