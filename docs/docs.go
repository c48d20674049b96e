// Package docs holds the generated Swagger description of the runsheet API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/render": {
            "post": {
                "description": "Render every snapshot of the payload as HTML and PDF, upload them and the home page",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["render"],
                "summary": "Render a schedule",
                "parameters": [
                    {"description": "Schedule payload", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.RenderSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.RenderSummary"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/ports.RenderSummary"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/ports.RenderSummary"}}
                }
            }
        },
        "/render/preview": {
            "post": {
                "description": "Render a single preset view as HTML without uploading anything",
                "consumes": ["application/json"],
                "produces": ["text/html"],
                "tags": ["render"],
                "summary": "Preview one view",
                "parameters": [
                    {"description": "Preview request", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "HTML document", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/presets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["render"],
                "summary": "List group presets",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entities.GroupPreset"}}}
                }
            }
        },
        "/profiles": {
            "get": {
                "description": "Most recently updated first",
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "List style profiles",
                "parameters": [
                    {"type": "integer", "description": "Page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Store a raw style document under a new ID",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Create a style profile",
                "parameters": [
                    {"description": "Profile data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ports.SaveProfileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entities.StoredProfile"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/profiles/{id}": {
            "get": {
                "description": "Get the stored document, or the canonical profile with normalized=true",
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Get a style profile",
                "parameters": [
                    {"type": "string", "description": "Profile ID", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Return the normalized profile", "name": "normalized", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.StoredProfile"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Replace the stored document of a profile, creating it if needed",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Save a style profile",
                "parameters": [
                    {"type": "string", "description": "Profile ID", "name": "id", "in": "path", "required": true},
                    {"description": "Profile data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ports.SaveProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.StoredProfile"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["profiles"],
                "summary": "Delete a style profile",
                "parameters": [
                    {"type": "string", "description": "Profile ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "entities.GroupPreset": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "groupBy": {"type": "string"}
            }
        },
        "entities.StoredProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "document": {"type": "object"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "ports.SaveProfileRequest": {
            "type": "object",
            "required": ["document", "name"],
            "properties": {
                "name": {"type": "string", "maxLength": 200},
                "document": {"type": "object"}
            }
        },
        "ports.SnapshotResult": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "htmlUrl": {"type": "string"},
                "pdfUrl": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "ports.RenderSummary": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "runId": {"type": "string"},
                "htmlUrl": {"type": "string"},
                "snapshots": {"type": "array", "items": {"$ref": "#/definitions/ports.SnapshotResult"}},
                "executionTimeSeconds": {"type": "number"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Runsheet API",
	Description:      "Renders event schedules into styled HTML and PDF documents",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
