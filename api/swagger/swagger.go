package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Score Tracker API",
        "description": "Score tracking and trend analysis for tutored students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin session"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Exams", "description": "Exam records with subject scores"},
        {"name": "Trends", "description": "Score trend analysis and export"},
        {"name": "VideoOverrides", "description": "Course video URL overrides"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange the admin token for a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with latest exam and trend tag",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "grade", "in": "query", "type": "string", "enum": ["10", "11", "12"]},
                    {"name": "class_name", "in": "query", "type": "string"},
                    {"name": "head_teacher", "in": "query", "type": "string"},
                    {"name": "is_active", "in": "query", "type": "string", "enum": ["all", "active", "inactive"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List a student's exam records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/trend": {
            "get": {
                "tags": ["Trends"],
                "summary": "Get a student's score trend summary",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/trend/export": {
            "get": {
                "tags": ["Trends"],
                "summary": "Export a student's trend report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered report"}
                }
            }
        },
        "/exams": {
            "post": {
                "tags": ["Exams"],
                "summary": "Record an exam with subject scores",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExamRecordInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Get exam record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Exams"],
                "summary": "Update an exam and replace its subject scores",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExamRecordInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Exams"],
                "summary": "Delete exam record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/video-overrides": {
            "get": {
                "tags": ["VideoOverrides"],
                "summary": "List course video overrides",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/video-overrides/{courseId}": {
            "get": {
                "tags": ["VideoOverrides"],
                "summary": "Get a course's video override",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["VideoOverrides"],
                "summary": "Set a course's video override",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VideoOverrideInput"}}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            },
            "delete": {
                "tags": ["VideoOverrides"],
                "summary": "Remove a course's video override",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            },
            "required": ["token"]
        },
        "StudentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade": {"type": "string", "enum": ["10", "11", "12"]},
                "class_name": {"type": "string"},
                "head_teacher": {"type": "string"},
                "is_active": {"type": "boolean"},
                "notes": {"type": "string"}
            },
            "required": ["name", "grade", "class_name"]
        },
        "SubjectScoreInput": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "score": {"type": "number"},
                "full_score": {"type": "number"}
            },
            "required": ["subject", "score"]
        },
        "CreateExamRecordInput": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "exam_name": {"type": "string"},
                "exam_type": {"type": "string", "enum": ["monthly", "midterm", "final", "mock", "weekly", "joint", "other"]},
                "exam_date": {"type": "string", "format": "date"},
                "total_score": {"type": "number"},
                "total_full_score": {"type": "number"},
                "class_rank": {"type": "integer"},
                "grade_rank": {"type": "integer"},
                "notes": {"type": "string"},
                "subject_scores": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectScoreInput"}
                }
            },
            "required": ["student_id", "exam_name", "exam_type", "exam_date", "total_score"]
        },
        "UpdateExamRecordInput": {
            "type": "object",
            "properties": {
                "exam_name": {"type": "string"},
                "exam_type": {"type": "string"},
                "exam_date": {"type": "string", "format": "date"},
                "total_score": {"type": "number"},
                "total_full_score": {"type": "number"},
                "class_rank": {"type": "integer"},
                "grade_rank": {"type": "integer"},
                "notes": {"type": "string"},
                "subject_scores": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectScoreInput"}
                }
            },
            "required": ["exam_name", "exam_type", "exam_date", "total_score"]
        },
        "VideoOverrideInput": {
            "type": "object",
            "properties": {
                "video_url": {"type": "string"}
            },
            "required": ["video_url"]
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
