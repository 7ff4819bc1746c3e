// Package docs registers the API description served at /v1/openapi.json.
// It follows the layout produced by swag init from the annotations on cmd/server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/questions": {
            "get": {"summary": "Questionnaire", "tags": ["test"], "responses": {"200": {"description": "OK"}}}
        },
        "/me/test/start": {
            "post": {"summary": "Start the test timer", "tags": ["test"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/me/test/answers": {
            "post": {"summary": "Submit all answers", "tags": ["test"], "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAnswersRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Unknown question"}, "422": {"description": "Missing answers"}}}
        },
        "/me/test/reset": {
            "post": {"summary": "Clear the stored test for a retake", "tags": ["test"], "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/me/results": {
            "get": {"summary": "Results view", "tags": ["results"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Document unavailable after retries"}}}
        },
        "/me/categories/{category}/toggle": {
            "post": {"summary": "Open or close a category card", "tags": ["results"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/category"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/me/categories/{category}/advance": {
            "post": {"summary": "Move to the next diagnostic question", "tags": ["results"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/category"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/me/categories/{category}/recommendations/{recId}/activities": {
            "post": {"summary": "Complete an activity; currentIndex -1 resets", "tags": ["results"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/category"}, {"$ref": "#/parameters/recId"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteActivityRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid index"}, "404": {"description": "Unknown recommendation"}}}
        },
        "/me/categories/{category}/recommendations/{recId}/reset": {
            "post": {"summary": "Reset a recommendation", "tags": ["results"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/category"}, {"$ref": "#/parameters/recId"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/me/recommendations/{recId}/feedback/open": {
            "post": {"summary": "Reopen the feedback questionnaire", "tags": ["feedback"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/recId"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not completed or no feedback"}}}
        },
        "/me/recommendations/{recId}/feedback": {
            "post": {"summary": "Submit feedback answers", "tags": ["feedback"], "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/recId"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackRequest"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Missing answers"}}}
        },
        "/me/feedback/dismiss": {
            "post": {"summary": "Close the feedback questionnaire", "tags": ["feedback"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/dashboard": {
            "get": {"summary": "Aggregate levels and veracity flags", "tags": ["admin"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/admin/export.csv": {
            "get": {"summary": "Export tested students", "tags": ["admin"], "produces": ["text/csv"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/superadmin/feedback": {
            "get": {"summary": "Feedback tallies per recommendation", "tags": ["admin"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/ws/admin": {
            "get": {"summary": "Live feed of results_saved and test_reset events", "tags": ["admin"],
                "parameters": [{"in": "query", "name": "token", "type": "string", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "parameters": {
        "category": {"in": "path", "name": "category", "type": "string", "required": true,
            "enum": ["personal", "social", "academico", "fisico"]},
        "recId": {"in": "path", "name": "recId", "type": "string", "required": true}
    },
    "definitions": {
        "SubmitAnswersRequest": {"type": "object", "properties": {
            "answers": {"type": "object", "additionalProperties": {"type": "boolean"}}}},
        "CompleteActivityRequest": {"type": "object", "required": ["currentIndex"], "properties": {
            "currentIndex": {"type": "integer"}}},
        "FeedbackRequest": {"type": "object", "properties": {
            "answers": {"type": "object", "additionalProperties": {"type": "boolean"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Autoestima Results API",
	Description:      "Self-esteem questionnaire scoring, recommendations and progress",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
