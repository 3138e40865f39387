// Package docs holds the OpenAPI document served under /api/docs.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "User login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "400": {"description": "Email and password are required", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "400": {"description": "Missing fields, missing or unusable invite code", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Catalog keyed by faculty",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/dto.CatalogFaculty"}}}
                }
            }
        },
        "/catalog/list": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Catalog as an ordered list",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CatalogFaculty"}}}
                }
            }
        },
        "/diplomas": {
            "get": {
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "List diplomas",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "year", "in": "query"},
                    {"type": "string", "name": "is_verified", "in": "query"},
                    {"type": "string", "name": "isVerified", "in": "query"},
                    {"enum": ["all", "verified", "unverified"], "type": "string", "name": "scope", "in": "query"},
                    {"type": "string", "name": "specialty", "in": "query"},
                    {"type": "string", "name": "faculty", "in": "query"},
                    {"enum": ["createdAt", "year", "studentName", "diplomaNumber"], "type": "string", "name": "sort", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "name": "dir", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"maximum": 100, "type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DiplomaListResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Create a diploma",
                "parameters": [
                    {"type": "string", "name": "studentName", "in": "formData", "required": true},
                    {"type": "string", "name": "specialty", "in": "formData", "required": true},
                    {"type": "integer", "name": "year", "in": "formData", "required": true},
                    {"type": "string", "name": "diplomaNumber", "in": "formData", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Diploma"}},
                    "400": {"description": "Missing fields, unknown specialty or bad file", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Diploma number already exists for this year", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/diplomas/filters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Filter vocabulary",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/diplomas/faculties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Verified diplomas per faculty",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/diplomas/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Get a diploma",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Diploma"}},
                    "404": {"description": "Diploma not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Update a diploma",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "studentName", "in": "formData"},
                    {"type": "string", "name": "specialty", "in": "formData"},
                    {"type": "integer", "name": "year", "in": "formData"},
                    {"type": "string", "name": "diplomaNumber", "in": "formData"},
                    {"type": "boolean", "name": "isVerified", "in": "formData"},
                    {"type": "file", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Diploma"}},
                    "404": {"description": "Diploma not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Diploma number already exists for this year", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["diplomas"],
                "summary": "Delete a diploma",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.OKResponse"}},
                    "404": {"description": "Diploma not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/diplomas/{id}/file": {
            "get": {
                "produces": ["application/pdf", "image/jpeg", "image/png"],
                "tags": ["diplomas"],
                "summary": "Download the diploma scan",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Diploma or file not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/invites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "List invites",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Invite"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Issue an invite",
                "parameters": [
                    {"description": "Optional lifetime", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.CreateInviteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Invite"}},
                    "409": {"description": "Generated code collided", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/invites/{key}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Delete an invite",
                "parameters": [{"type": "string", "description": "Invite id or code", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Invite not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/invites/{key}/revoke": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Revoke an invite",
                "parameters": [{"type": "string", "description": "Invite id or code", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Invite"}},
                    "404": {"description": "Invite not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/dto.UserResponse"}
            }
        },
        "dto.CatalogFaculty": {
            "type": "object",
            "properties": {
                "key": {"type": "string", "example": "economics"},
                "name": {"type": "string"},
                "specialties": {"type": "array", "items": {"type": "object", "properties": {"key": {"type": "string"}, "label": {"type": "string"}}}}
            }
        },
        "dto.CreateInviteRequest": {
            "type": "object",
            "properties": {"minutes": {"type": "integer", "example": 60}}
        },
        "dto.DiplomaListResponse": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/models.Diploma"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "message": {"type": "string"},
                "code": {"type": "string", "example": "RES_004"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "timestamp": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "database": {"type": "string", "example": "up"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.MeResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/dto.UserResponse"}}
        },
        "dto.OKResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean", "example": true}}
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "inviteCode": {"type": "string", "example": "K7Q2ZD"}
            }
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "isAdmin": {"type": "boolean"}
            }
        },
        "models.Diploma": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentName": {"type": "string"},
                "specialty": {"type": "string", "example": "051"},
                "year": {"type": "integer", "example": 2023},
                "diplomaNumber": {"type": "string"},
                "fileUrl": {"type": "string", "example": "/uploads/1718000000123_scan.pdf"},
                "isVerified": {"type": "boolean"},
                "facultyKey": {"type": "string"},
                "facultyName": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Invite": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "code": {"type": "string", "example": "K7Q2ZD"},
                "createdAt": {"type": "string"},
                "expiresAt": {"type": "string"},
                "usedAt": {"type": "string"},
                "usedById": {"type": "string"},
                "revokedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token: \"Bearer <jwt>\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Diploma Registry API",
	Description:      "Registry of graduation diplomas with scanned certificates, catalog-aware search and invite-based staff onboarding.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
