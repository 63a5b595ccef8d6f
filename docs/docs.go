// Package docs registers the Swagger document served at /swag/swagger.
// The template below is maintained by hand; running `swag init` over the
// handler annotations regenerates it in the same format.
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
        "/admin/publish": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Publish or unpublish rows of any content kind",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/admin/publish-all": {
            "post": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Publish every content kind in one batch",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Upload one image",
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/admin/{resource}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List rows of one content kind",
                "parameters": [
                    {"type": "string", "name": "resource", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a content row",
                "parameters": [
                    {"type": "string", "name": "resource", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/public/page": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Aggregated public page payload",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Recanto Moriah content API",
	Description:      "Content management and public aggregation backend for the Recanto Moriah site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
