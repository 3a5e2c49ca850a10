// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/clean_data": {
            "get": {
                "description": "Run the cleaning pipeline on the configured raw file and write the clean and excluded files. Failures are reported in the body with status \"error\".",
                "produces": ["application/json"],
                "tags": ["cleaning"],
                "summary": "Clean trip data",
                "responses": {
                    "200": {"description": "Run summary", "schema": {"$ref": "#/definitions/model.CleanResult"}}
                }
            }
        },
        "/api/v1/runs": {
            "get": {
                "description": "Get all cleaning runs, newest first",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "responses": {
                    "200": {"description": "Runs", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Run"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Run the cleaning pipeline. Empty fields fall back to the configured paths.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Start a cleaning run",
                "parameters": [
                    {"description": "Run overrides", "name": "run", "in": "body", "schema": {"$ref": "#/definitions/model.RunSpec"}}
                ],
                "responses": {
                    "200": {"description": "Run succeeded", "schema": {"$ref": "#/definitions/model.CleanResult"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Run failed", "schema": {"$ref": "#/definitions/model.CleanResult"}}
                }
            }
        },
        "/api/v1/runs/{id}": {
            "get": {
                "description": "Retrieve a run with its per-stage summaries",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run details", "schema": {"$ref": "#/definitions/handler.RunDetail"}},
                    "404": {"description": "Run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/trips": {
            "get": {
                "description": "Get clean trips loaded into the database",
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "List trips",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of trips", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Trips", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Trip"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/trips/load": {
            "post": {
                "description": "Load the clean file into the trips table in chunks",
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "Load trips",
                "responses": {
                    "200": {"description": "Load summary", "schema": {"$ref": "#/definitions/model.LoadResult"}},
                    "500": {"description": "Load failed", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/zones/fastest": {
            "get": {
                "description": "Rank 0.01° pickup zones of the clean file by average speed",
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Fastest pickup zones",
                "parameters": [
                    {"type": "integer", "description": "Number of zones", "name": "top", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Zones, fastest first", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.ZoneStat"}}},
                    "404": {"description": "Clean file not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Clean file lacks required columns", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/zones/fastest/export": {
            "post": {
                "description": "Write the fastest zones report as CSV, JSON or XLSX",
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Export fastest pickup zones",
                "parameters": [
                    {"type": "integer", "description": "Number of zones", "name": "top", "in": "query"},
                    {"type": "string", "default": "csv", "description": "csv, json or xlsx", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Export result", "schema": {"$ref": "#/definitions/model.ExportResult"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Export failed", "schema": {"$ref": "#/definitions/model.ExportResult"}}
                }
            }
        },
        "/api/v1/download/{filename}": {
            "get": {
                "description": "Download a file from the reports directory",
                "produces": ["application/octet-stream"],
                "tags": ["files"],
                "summary": "Download report",
                "parameters": [
                    {"type": "string", "description": "File name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/files/{filename}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Get file information",
                "parameters": [
                    {"type": "string", "description": "File name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "File information", "schema": {"$ref": "#/definitions/handler.FileInfo"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.FileInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "size": {"type": "integer"}
            }
        },
        "handler.RunDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "status": {"type": "string"},
                "rows_cleaned": {"type": "integer"},
                "rows_excluded": {"type": "integer"},
                "message": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "stages": {"type": "array", "items": {"$ref": "#/definitions/model.StageSummary"}}
            }
        },
        "model.CleanResult": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "status": {"type": "string"},
                "message": {"type": "string"},
                "rows_cleaned": {"type": "integer"},
                "rows_excluded": {"type": "integer"},
                "clean_file": {"type": "string"},
                "log_file": {"type": "string"},
                "derived_features": {"type": "array", "items": {"type": "string"}},
                "stages": {"type": "array", "items": {"$ref": "#/definitions/model.StageSummary"}},
                "duration_ms": {"type": "integer"}
            }
        },
        "model.ExportResult": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "path": {"type": "string"},
                "record_count": {"type": "integer"},
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "exported_at": {"type": "string"}
            }
        },
        "model.LoadResult": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "inserted": {"type": "integer"},
                "skipped": {"type": "integer"},
                "chunks": {"type": "integer"},
                "duration_ms": {"type": "integer"}
            }
        },
        "model.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "status": {"type": "string"},
                "rows_cleaned": {"type": "integer"},
                "rows_excluded": {"type": "integer"},
                "message": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.RunSpec": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "clean_file": {"type": "string"},
                "excluded_file": {"type": "string"}
            }
        },
        "model.StageSummary": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "rows_in": {"type": "integer"},
                "rows_excluded": {"type": "integer"},
                "duration_ms": {"type": "integer"}
            }
        },
        "model.Trip": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "vendor_id": {"type": "string"},
                "pickup_datetime": {"type": "string"},
                "dropoff_datetime": {"type": "string"},
                "passenger_count": {"type": "integer"},
                "pickup_longitude": {"type": "number"},
                "pickup_latitude": {"type": "number"},
                "dropoff_longitude": {"type": "number"},
                "dropoff_latitude": {"type": "number"},
                "store_and_fwd_flag": {"type": "string"},
                "trip_duration": {"type": "number"},
                "trip_duration_min": {"type": "number"},
                "trip_distance_km": {"type": "number"},
                "speed_kmh": {"type": "number"}
            }
        },
        "model.ZoneStat": {
            "type": "object",
            "properties": {
                "zone": {"type": "string"},
                "avg_speed_kmh": {"type": "number"},
                "stddev_speed_kmh": {"type": "number"},
                "trips": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Trip Data Pipeline API",
	Description:      "Cleans raw taxi trip data and serves clean trips, run history and zone reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
