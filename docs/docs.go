// Package docs registers the Swagger spec served at /swagger. Generated by
// swag init; trimmed to the identity endpoints.
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
    "paths": {
        "/api/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a local account",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login with a local credential pair",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/auth/gh/{code}": {
            "get": {
                "tags": ["auth"],
                "summary": "Authenticate with a GitHub authorization code",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/auth/google": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate with a verified Google profile",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/facebook": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate with a verified Facebook profile",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/profile": {
            "get": {
                "tags": ["profile"],
                "summary": "Current user's profile",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/update": {
            "put": {
                "tags": ["profile"],
                "summary": "Update the current user's profile",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "identity-service API",
	Description:      "User identity service: local accounts, OAuth identities, session tokens and profiles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
