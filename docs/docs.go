// Package docs holds the OpenAPI document for the HTTP API.
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
        "/interactions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Discord interactions webhook",
                "parameters": [
                    {"type": "string", "description": "Request signature", "name": "X-Signature-Ed25519", "in": "header", "required": true},
                    {"type": "string", "description": "Signed timestamp", "name": "X-Signature-Timestamp", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/discord.InteractionResponse"}},
                    "401": {"description": "invalid request signature", "schema": {"type": "string"}},
                    "413": {"description": "request body too large", "schema": {"type": "string"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["text/plain"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "ok", "schema": {"type": "string"}},
                    "503": {"description": "unhealthy: database unreachable", "schema": {"type": "string"}}
                }
            }
        },
        "/api/changelog": {
            "get": {
                "produces": ["application/json"],
                "summary": "Changelog entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/updates.Entry"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "string"}}
                }
            }
        },
        "/api/updates": {
            "get": {
                "produces": ["application/json"],
                "summary": "Posted updates",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/srv.postedUpdateJSON"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "string"}}
                }
            }
        },
        "/api/items": {
            "get": {
                "produces": ["application/json"],
                "summary": "Item catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/game.Template"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "string"}}
                }
            }
        },
        "/api/guilds/{guild}/players/{user}/record": {
            "get": {
                "produces": ["application/json"],
                "summary": "Duel record",
                "parameters": [
                    {"type": "string", "description": "Guild id", "name": "guild", "in": "path", "required": true},
                    {"type": "string", "description": "User id", "name": "user", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dbgen.GetDuelRecordRow"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "dbgen.GetDuelRecordRow": {
            "type": "object",
            "properties": {
                "wins": {"type": "integer"},
                "losses": {"type": "integer"}
            }
        },
        "discord.InteractionResponse": {
            "type": "object",
            "properties": {
                "type": {"type": "integer"},
                "data": {"type": "object"}
            }
        },
        "game.Template": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "slot": {"type": "string"},
                "fit_slots": {"type": "array", "items": {"type": "string"}},
                "base_weight": {"type": "number"},
                "base_value": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "mods": {"type": "object", "additionalProperties": {"type": "integer"}},
                "weapon": {"$ref": "#/definitions/game.WeaponProfile"},
                "armor": {"type": "integer"}
            }
        },
        "game.WeaponProfile": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "min_range": {"type": "string"},
                "max_range": {"type": "string"},
                "accuracy": {"type": "number"},
                "damage_min": {"type": "integer"},
                "damage_max": {"type": "integer"},
                "class": {"type": "string"}
            }
        },
        "srv.postedUpdateJSON": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "digest": {"type": "string"},
                "state": {"type": "string"},
                "posted_at": {"type": "string"}
            }
        },
        "updates.Entry": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "date": {"type": "string"},
                "unreleased": {"type": "boolean"},
                "summary": {"type": "string"},
                "sections": {"type": "array", "items": {"$ref": "#/definitions/updates.Section"}}
            }
        },
        "updates.Section": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "items": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Lowlife Society API",
	Description:      "Discord duel bot: interactions endpoint, item catalog, duel records and game updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
