package handlers

import (
	"encoding/json"
	"net/http"

	"bike-dashboard/internal/models"
)

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

func jsonResponse(description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/" + schemaRef},
			},
		},
	}
}

var (
	yearParam = queryParam("year", "Year for the seasons chart (default: 2018)",
		map[string]interface{}{"type": "integer", "default": 2018})
	tempMinParam = queryParam("temp_min", "Lower temperature bound in °C, inclusive (default: -10)",
		map[string]interface{}{"type": "number", "default": -10})
	tempMaxParam = queryParam("temp_max", "Upper temperature bound in °C, inclusive (default: 40)",
		map[string]interface{}{"type": "number", "default": 40})
	weekdayParam = queryParam("weekday", "Weekdays to include, repeatable; an empty value selects none (default: all)",
		map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string", "enum": models.WeekDays}})
	holidayParam = queryParam("holiday", "Holiday categories to include, repeatable; an empty value selects none (default: both)",
		map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string", "enum": models.HolidayFlags}})
	dateParam = queryParam("date", "Calendar date (YYYY-MM-DD) for the detail panel (default: 2017-11-01)",
		map[string]interface{}{"type": "string", "format": "date"})
)

var badRequest = jsonResponse("Malformed numeric or selection parameter", "ErrorResponse")

func chartOperation(summary, description string, params ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     summary,
			"description": description,
			"tags":        []string{"Charts"},
			"parameters":  params,
			"responses": map[string]interface{}{
				"200": jsonResponse("Chart table and descriptor", "Chart"),
				"400": badRequest,
			},
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Bike Rental Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Bike Rental Dashboard API",
			"description": "Chart tables and point lookups over hourly Seoul bike rental records",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/charts/seasons": chartOperation(
				"Total rentals per season",
				"Pie chart of summed rented bike counts per season for one year. Unknown years give an empty table.",
				yearParam),
			"/api/charts/monthly": chartOperation(
				"Average rentals per month",
				"Bar chart of mean rented bike count per calendar month over all years"),
			"/api/charts/hourly-weekday": chartOperation(
				"Average rentals per hour and weekday",
				"Line chart of mean rented bike count per hour, one line per selected weekday, within the temperature band",
				tempMinParam, tempMaxParam, weekdayParam),
			"/api/charts/hourly-holiday": chartOperation(
				"Average rentals per hour, holidays versus working days",
				"Grouped bar chart of mean rented bike count per hour for each selected holiday category, within the temperature band",
				tempMinParam, tempMaxParam, holidayParam),
			"/api/charts/{name}.svg": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Rendered chart",
					"tags":    []string{"Charts"},
					"parameters": []map[string]interface{}{
						{
							"name":     "name",
							"in":       "path",
							"required": true,
							"schema": map[string]interface{}{
								"type": "string",
								"enum": []string{"seasons", "monthly", "hourly-weekday", "hourly-holiday"},
							},
						},
						yearParam, tempMinParam, tempMaxParam, weekdayParam, holidayParam,
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "SVG image",
							"content": map[string]interface{}{
								"image/svg+xml": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
						"204": map[string]interface{}{"description": "Chart table is empty"},
						"400": badRequest,
						"404": jsonResponse("Unknown chart", "ErrorResponse"),
					},
				},
			},
			"/api/details": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Detail panel for a date",
					"description": "Rented bike count, temperature and wind of the first record on the date. Unknown or malformed dates give {\"found\": false}.",
					"tags":        []string{"Details"},
					"parameters":  []map[string]interface{}{dateParam},
					"responses": map[string]interface{}{
						"200": jsonResponse("Detail panel", "Detail"),
					},
				},
			},
			"/api/dashboard": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Every chart and the detail panel",
					"description": "Recomputes all four charts and the detail panel for one combination of controls",
					"tags":        []string{"Dashboard"},
					"parameters": []map[string]interface{}{
						yearParam, tempMinParam, tempMaxParam, weekdayParam, holidayParam, dateParam,
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Dashboard view"},
						"400": badRequest,
					},
				},
			},
			"/api/dataset": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Loaded dataset summary",
					"tags":    []string{"Dashboard"},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Record count, years, date range and load time"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"tags":    []string{"System"},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"tags":        []string{"System"},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Chart": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":        map[string]string{"type": "string"},
						"title":     map[string]string{"type": "string"},
						"kind":      map[string]interface{}{"type": "string", "enum": []string{"pie", "bar", "grouped-bar", "line"}},
						"encoding":  map[string]string{"type": "object"},
						"x_ticks":   map[string]string{"type": "array"},
						"rows":      map[string]string{"type": "array"},
						"row_count": map[string]string{"type": "integer"},
						"series":    map[string]string{"type": "array"},
					},
				},
				"Detail": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"found":       map[string]string{"type": "boolean"},
						"date":        map[string]string{"type": "string", "format": "date"},
						"bike_count":  map[string]string{"type": "integer"},
						"temperature": map[string]string{"type": "number"},
						"wind":        map[string]string{"type": "number"},
					},
					"required": []string{"found"},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
