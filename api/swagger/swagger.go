package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Scheduler API",
        "description": "Conflict-free session assignment for teacher/classroom pairs",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Batch session assignment"},
        {"name": "Teachers", "description": "Teacher directory"},
        {"name": "Classrooms", "description": "Classroom directory"},
        {"name": "Schedules", "description": "Committed schedule store"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/schedules/assign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a batch of session requests",
                "description": "Processes requests strictly in input order. Each request is placed on the first conflict-free teacher/classroom pair (teacher-major, classroom-minor order). Commits made earlier in the batch are visible to later requests.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Batch aborted by collaborator failure; partial progress in data"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Deactivate teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classrooms": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List classrooms",
                "parameters": [
                    {"name": "room_type", "in": "query", "type": "string"},
                    {"name": "min_capacity", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classrooms"],
                "summary": "Create classroom",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassroomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Get classroom",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Classrooms"],
                "summary": "Update classroom",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClassroomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Classrooms"],
                "summary": "Deactivate classroom",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List committed schedules",
                "parameters": [
                    {"name": "day_of_week", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"},
                    {"name": "classroom_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Cancel schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "SessionRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "room_type": {"type": "string"},
                "capacity": {"type": "integer"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "09:00"},
                "date": {"type": "string", "example": "2025-09-01"},
                "notes": {"type": "string"},
                "recurring": {"type": "boolean"}
            },
            "required": ["subject", "room_type", "capacity", "day_of_week", "start_time", "end_time", "date"]
        },
        "AssignBatchRequest": {
            "type": "object",
            "properties": {
                "requests": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SessionRequest"}
                }
            }
        },
        "AssignmentFailure": {
            "type": "object",
            "properties": {
                "request": {"$ref": "#/definitions/SessionRequest"},
                "reason": {"type": "string"},
                "eligible_teachers": {"type": "integer"},
                "eligible_classrooms": {"type": "integer"}
            }
        },
        "AssignmentSummary": {
            "type": "object",
            "properties": {
                "total_requests": {"type": "integer"},
                "successful": {"type": "integer"},
                "failed": {"type": "integer"},
                "success_rate": {"type": "string", "example": "75%"}
            }
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "available_days": {"type": "array", "items": {"type": "string"}},
                "available_from": {"type": "string", "example": "08:00"},
                "available_until": {"type": "string", "example": "16:00"}
            },
            "required": ["full_name", "email", "subject", "available_days", "available_from", "available_until"]
        },
        "UpdateTeacherRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "available_days": {"type": "array", "items": {"type": "string"}},
                "available_from": {"type": "string"},
                "available_until": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["full_name", "email", "subject", "available_days", "available_from", "available_until"]
        },
        "CreateClassroomRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "room_type": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["name", "room_type", "capacity"]
        },
        "UpdateClassroomRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "room_type": {"type": "string"},
                "capacity": {"type": "integer"},
                "active": {"type": "boolean"}
            },
            "required": ["name", "room_type", "capacity"]
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
                "status": {"type": "integer"}
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
