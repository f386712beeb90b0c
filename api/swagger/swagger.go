package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Resource Bot API",
        "description": "WhatsApp webhook and catalog search for study resources",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Webhook", "description": "Inbound WhatsApp messages"},
        {"name": "Catalog", "description": "Catalog metadata"},
        {"name": "Resources", "description": "Resource search and export"}
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
                    "200": {"description": "Catalog loaded"},
                    "503": {"description": "Catalog not loaded"}
                }
            }
        },
        "/whatsapp": {
            "post": {
                "tags": ["Webhook"],
                "summary": "Inbound WhatsApp message",
                "description": "Runs one dialogue turn for the sender. The reply is sent through the messaging gateway; the HTTP body is always OK.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/plain"],
                "parameters": [
                    {"name": "From", "in": "formData", "type": "string", "required": true},
                    {"name": "Body", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/catalog/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List catalog subjects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/resources/search": {
            "post": {
                "tags": ["Resources"],
                "summary": "Search study resources",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/resources/export": {
            "get": {
                "tags": ["Resources"],
                "summary": "Export search results",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "faculty", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "subject_code", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "module", "in": "query", "type": "string"},
                    {"name": "query", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SearchRequest": {
            "type": "object",
            "properties": {
                "faculty": {"type": "string"},
                "subject": {"type": "string"},
                "subject_code": {"type": "string"},
                "semester": {"type": "string"},
                "module": {"type": "string"},
                "query": {"type": "string", "description": "Free-text request resolved through criteria extraction"}
            }
        },
        "Resource": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "faculty": {"type": "string"},
                "subject": {"type": "string"},
                "subject_code": {"type": "string"},
                "semester": {"type": "string"},
                "module": {"type": "string"},
                "resource_link": {"type": "string"}
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
