package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the PV Cycle Platform API
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

	idParam := map[string]interface{}{
		"name":        "id",
		"in":          "path",
		"description": "Scenario ID",
		"required":    true,
		"schema":      map[string]string{"type": "integer"},
	}

	materialParam := map[string]interface{}{
		"name":        "material",
		"in":          "path",
		"description": "Material name, e.g. glass",
		"required":    true,
		"schema":      map[string]string{"type": "string"},
	}

	resultParams := []map[string]interface{}{
		{
			"name":        "run_id",
			"in":          "query",
			"description": "Simulation run to read; defaults to the scenario's latest run",
			"required":    false,
			"schema":      map[string]string{"type": "integer"},
		},
		{
			"name":        "from_year",
			"in":          "query",
			"description": "First calendar year to include",
			"required":    false,
			"schema":      map[string]string{"type": "integer"},
		},
		{
			"name":        "to_year",
			"in":          "query",
			"description": "Last calendar year to include",
			"required":    false,
			"schema":      map[string]string{"type": "integer"},
		},
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "PV Cycle Platform API",
			"description": "Photovoltaic module mass flow and reliability projection platform with scenario storage, Weibull cohort simulation, and per-material circular economy cascades",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "PV Cycle Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/scenarios": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List scenarios",
					"description": "Retrieve stored scenarios with pagination",
					"parameters":  paginationParams,
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"id":          map[string]string{"type": "integer"},
														"name":        map[string]string{"type": "string"},
														"description": map[string]string{"type": "string"},
														"created_at":  map[string]string{"type": "string", "format": "date-time"},
														"updated_at":  map[string]string{"type": "string", "format": "date-time"},
													},
												},
											},
											"total":       map[string]string{"type": "integer"},
											"page":        map[string]string{"type": "integer"},
											"limit":       map[string]string{"type": "integer"},
											"total_pages": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/scenarios/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get a scenario",
					"description": "Retrieve one scenario's metadata",
					"parameters":  []map[string]interface{}{idParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "Scenario not found"},
					},
				},
			},
			"/api/scenarios/{id}/baseline": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get the module baseline",
					"description": "Retrieve the per-year module baseline rows of a scenario",
					"parameters":  []map[string]interface{}{idParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "Scenario not found"},
					},
				},
			},
			"/api/scenarios/{id}/materials": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List tracked materials",
					"description": "List the materials with a baseline in this scenario",
					"parameters":  []map[string]interface{}{idParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
					},
				},
			},
			"/api/scenarios/{id}/materials/{material}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get a material baseline",
					"description": "Retrieve the per-year baseline rows of one tracked material",
					"parameters":  []map[string]interface{}{idParam, materialParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "Scenario or material not found"},
					},
				},
			},
			"/api/scenarios/{id}/run": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Run a simulation",
					"description": "Execute the reliability projection and mass flow cascades for a scenario and persist the results as a new run",
					"parameters":  []map[string]interface{}{idParam},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Run completed"},
						"404": map[string]interface{}{"description": "Scenario not found"},
						"422": map[string]interface{}{"description": "Baseline failed validation"},
					},
				},
			},
			"/api/scenarios/{id}/results": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get yearly projection results",
					"description": "Retrieve the scenario-level yearly series of a run: cumulative areas, power, and the end-of-life split",
					"parameters":  append([]map[string]interface{}{idParam}, resultParams...),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "Scenario or run not found"},
					},
				},
			},
			"/api/scenarios/{id}/materials/{material}/flows": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get material mass flows",
					"description": "Retrieve one material's yearly mass flow table of a run: end-of-life network, manufacturing scrap network, virgin stock demand, and landfill totals",
					"parameters":  append([]map[string]interface{}{idParam, materialParam}, resultParams...),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
						"404": map[string]interface{}{"description": "Scenario, material, or run not found"},
					},
				},
			},
			"/api/lca": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Evaluate a life cycle impact assessment",
					"description": "Scale the TRACI 2.1 impact factors for silicon photovoltaic panels by a module area in m2, with optional per-category factor overrides",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"area_m2": map[string]string{"type": "number"},
										"overrides": map[string]interface{}{
											"type":        "object",
											"description": "Replacement impact factors keyed by category name",
										},
									},
									"required": []string{"area_m2"},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Evaluated impact categories"},
						"400": map[string]interface{}{"description": "Invalid request body"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
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
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
