package handlers

import (
	"encoding/json"
	"net/http"

	"neo-platform/internal/filters"
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

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

var (
	dateSchema   = map[string]interface{}{"type": "string", "format": "date"}
	numberSchema = map[string]interface{}{"type": "number"}
	nullable     = map[string]interface{}{"type": "number", "nullable": true}
)

// openAPIDocument describes the close approach API
func openAPIDocument() map[string]interface{} {
	approachParams := []map[string]interface{}{
		queryParam(filters.ParamDate, "Approaches on this UTC day (YYYY-MM-DD)", dateSchema),
		queryParam(filters.ParamStartDate, "Approaches on or after this day (YYYY-MM-DD)", dateSchema),
		queryParam(filters.ParamEndDate, "Approaches on or before this day (YYYY-MM-DD)", dateSchema),
		queryParam(filters.ParamDistanceMin, "Minimum approach distance in au", numberSchema),
		queryParam(filters.ParamDistanceMax, "Maximum approach distance in au", numberSchema),
		queryParam(filters.ParamVelocityMin, "Minimum relative velocity in km/s", numberSchema),
		queryParam(filters.ParamVelocityMax, "Maximum relative velocity in km/s", numberSchema),
		queryParam(filters.ParamDiameterMin, "Minimum NEO diameter in km; unknown diameters never match", numberSchema),
		queryParam(filters.ParamDiameterMax, "Maximum NEO diameter in km; unknown diameters never match", numberSchema),
		queryParam(filters.ParamHazardous, "Only potentially hazardous (true) or non-hazardous (false) objects", map[string]interface{}{"type": "boolean"}),
		queryParam("page", "Page number (default: 1)", map[string]interface{}{"type": "integer", "default": 1}),
		queryParam("limit", "Records per page (default: 100)", map[string]interface{}{"type": "integer", "default": 100}),
	}

	return map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "NEO Platform API",
			"description": "Near-Earth objects and their close approaches to Earth, linked and queryable",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/approaches": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Query close approaches",
					"description": "Close approaches in load order, filtered and paginated",
					"parameters":  approachParams,
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": jsonContent(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"data":        map[string]interface{}{"type": "array", "items": ref("Approach")},
									"total":       map[string]string{"type": "integer"},
									"page":        map[string]string{"type": "integer"},
									"limit":       map[string]string{"type": "integer"},
									"total_pages": map[string]string{"type": "integer"},
								},
							}),
						},
						"400": map[string]interface{}{"description": "Invalid filter", "content": jsonContent(ref("Error"))},
					},
				},
			},
			"/api/neos/{designation}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get a NEO by primary designation",
					"parameters": []map[string]interface{}{
						{"name": "designation", "in": "path", "required": true, "schema": map[string]string{"type": "string"}},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "The object and its close approaches", "content": jsonContent(ref("NEODetail"))},
						"404": map[string]interface{}{"description": "No object with that designation", "content": jsonContent(ref("Error"))},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "API and database are reachable"},
						"503": map[string]interface{}{"description": "Database is unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{"schema": map[string]string{"type": "string"}},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"NEO": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"designation":           map[string]string{"type": "string"},
						"name":                  map[string]string{"type": "string"},
						"diameter_km":           nullable,
						"potentially_hazardous": map[string]string{"type": "boolean"},
					},
				},
				"Approach": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"datetime_utc":  map[string]string{"type": "string", "example": "1900-12-27 01:30"},
						"distance_au":   nullable,
						"velocity_km_s": nullable,
						"neo":           ref("NEO"),
					},
				},
				"NEODetail": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"designation":           map[string]string{"type": "string"},
						"name":                  map[string]string{"type": "string"},
						"fullname":              map[string]string{"type": "string"},
						"diameter_km":           nullable,
						"potentially_hazardous": map[string]string{"type": "boolean"},
						"approaches":            map[string]interface{}{"type": "array", "items": ref("Approach")},
					},
				},
				"Error": map[string]interface{}{
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
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the NEO Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openAPIDocument())
}
