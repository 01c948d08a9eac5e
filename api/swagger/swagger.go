package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lab Admin API",
        "description": "Attendance scheduling and geofenced check-in engine for lab membership",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Campaigns", "description": "Attendance campaign lifecycle"},
        {"name": "CheckIns", "description": "Location-verified call-up signing"},
        {"name": "Reports", "description": "Asynchronous attendance exports"}
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
        "/campaigns": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List campaigns",
                "parameters": [
                    {"name": "active_on", "in": "query", "type": "string", "description": "YYYY-MM-DD"},
                    {"name": "completed", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Campaigns"],
                "summary": "Create attendance campaign",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCampaignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/campaigns/{id}": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "Campaign detail with triggers and signed counts",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Campaigns"],
                "summary": "Update campaign",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCampaignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Completion cannot be reverted"}
                }
            },
            "delete": {
                "tags": ["Campaigns"],
                "summary": "Delete campaign",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/campaigns/{id}/force-trigger": {
            "post": {
                "tags": ["Campaigns"],
                "summary": "Create a manual trigger for today",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/ForceTriggerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Trigger already exists for this date"}
                }
            }
        },
        "/checkins": {
            "post": {
                "tags": ["CheckIns"],
                "summary": "Sign a call-up with the caller's location",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitCheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Signed"},
                    "404": {"description": "Unknown trigger"},
                    "409": {"description": "Already signed or trigger closed"},
                    "422": {"description": "Outside the campaign geofence"}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a campaign attendance export",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/reports/status/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the job owner"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "CreateCampaignRequest": {
            "type": "object",
            "required": ["name", "date_start", "date_end", "location_name", "radius_meters", "penalty_points"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "date_start": {"type": "string", "example": "2026-03-01"},
                "date_end": {"type": "string", "example": "2026-03-31"},
                "location_name": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "radius_meters": {"type": "number"},
                "penalty_points": {"type": "integer"},
                "target_grades": {"type": "array", "items": {"type": "string"}},
                "target_user_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ForceTriggerRequest": {
            "type": "object",
            "properties": {
                "trigger_time": {"type": "string", "example": "19:30:00"}
            }
        },
        "SubmitCheckInRequest": {
            "type": "object",
            "required": ["trigger_id"],
            "properties": {
                "trigger_id": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["campaignId", "format"],
            "properties": {
                "campaignId": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
