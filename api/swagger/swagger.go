package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Claim Review API",
        "description": "Officer workbench for reviewing crop damage claims",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Claims", "description": "Claim listing, live stream and adjudication"},
        {"name": "Assets", "description": "Signed photo and document downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/claims": {
            "get": {
                "tags": ["Claims"],
                "summary": "List claims",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "approved", "rejected"]},
                    {"name": "reason", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/claims/stream": {
            "get": {
                "tags": ["Claims"],
                "summary": "Live claim snapshots (server-sent events)",
                "produces": ["text/event-stream"],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "reason", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream of snapshot batches"}
                }
            }
        },
        "/api/v1/claims/export": {
            "get": {
                "tags": ["Claims"],
                "summary": "Export the filtered claim list",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "required": true, "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "reason", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/claims/{id}": {
            "get": {
                "tags": ["Claims"],
                "summary": "Claim detail",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown claim", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/claims/{id}/approve": {
            "post": {
                "tags": ["Claims"],
                "summary": "Approve a pending claim",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown claim", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Claim already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/claims/{id}/reject": {
            "post": {
                "tags": ["Claims"],
                "summary": "Reject a pending claim with a remark",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectClaimRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing remark", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown claim", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Claim already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assets/{token}": {
            "get": {
                "tags": ["Assets"],
                "summary": "Download an asset via its signed token",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File contents"},
                    "404": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "RejectClaimRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
