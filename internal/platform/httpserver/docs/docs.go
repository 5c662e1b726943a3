// Package docs registers the governance API swagger document.
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
        "/v1/governance/instantiate": {
            "post": {
                "summary": "Create the global config",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InstantiateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ConfigResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/governance/execute": {
            "post": {
                "summary": "Execute one tagged command",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExecuteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExecuteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/governance/admins": {
            "post": {
                "summary": "Add admins (owner only)",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ConfigResponse"}}}
            },
            "delete": {
                "summary": "Remove admins (owner only)",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ConfigResponse"}}}
            }
        },
        "/v1/governance/config": {
            "get": {"summary": "Global config", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ConfigResponse"}}}}
        },
        "/v1/governance/stats": {
            "get": {"summary": "Vote statistics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StatsResponse"}}}}
        },
        "/v1/votes": {
            "get": {"summary": "Vote titles in creation order", "responses": {"200": {"description": "OK"}}},
            "post": {
                "summary": "Create a vote",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateVoteRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/VoteResponse"}}}
            }
        },
        "/v1/votes/{title}": {
            "get": {
                "summary": "Vote record",
                "parameters": [{"type": "string", "name": "title", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteResponse"}}}
            }
        },
        "/v1/votes/{title}/ballots": {
            "post": {
                "summary": "Cast a ballot",
                "parameters": [
                    {"type": "string", "name": "X-Sender", "in": "header", "required": true},
                    {"type": "string", "name": "title", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastBallotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteResponse"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/votes/{title}/pause": {"post": {"summary": "Pause a vote", "responses": {"200": {"description": "OK"}}}},
        "/v1/votes/{title}/unpause": {"post": {"summary": "Unpause a vote", "responses": {"200": {"description": "OK"}}}},
        "/v1/votes/{title}/whitelist/toggle": {"post": {"summary": "Flip whitelist enforcement", "responses": {"200": {"description": "OK"}}}},
        "/v1/votes/{title}/coin-gate/toggle": {"post": {"summary": "Flip coin gate enforcement", "responses": {"200": {"description": "OK"}}}},
        "/v1/votes/{title}/voters/{principal}": {
            "get": {"summary": "Whether principal already voted", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "ErrorResponse": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "Coin": {"type": "object", "properties": {"denom": {"type": "string"}, "amount": {"type": "integer"}}},
        "InstantiateRequest": {"type": "object", "properties": {"admins": {"type": "array", "items": {"type": "string"}}}},
        "AdminsRequest": {"type": "object", "properties": {"admins": {"type": "array", "items": {"type": "string"}}}},
        "CreateVoteRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "required_balance": {"type": "integer"},
                "min_votes_count": {"type": "integer"},
                "required_votes_percentage": {"type": "integer"},
                "whitelist_on": {"type": "boolean"},
                "whitelist": {"type": "array", "items": {"type": "string"}},
                "coin_gate_on": {"type": "boolean"},
                "required_coin": {"$ref": "#/definitions/Coin"}
            }
        },
        "CastBallotRequest": {
            "type": "object",
            "properties": {
                "choice": {"type": "string", "enum": ["For", "Against", "Abstain"]},
                "funds": {"type": "array", "items": {"$ref": "#/definitions/Coin"}}
            }
        },
        "ExecuteRequest": {
            "type": "object",
            "properties": {
                "create_new_vote": {"$ref": "#/definitions/CreateVoteRequest"},
                "vote": {"type": "object"},
                "close_vote": {"type": "object"},
                "open_vote": {"type": "object"},
                "toggle_whitelist": {"type": "object"},
                "toggle_coin_gate": {"type": "object"},
                "add_admins": {"$ref": "#/definitions/AdminsRequest"},
                "remove_admins": {"$ref": "#/definitions/AdminsRequest"}
            }
        },
        "ExecuteResponse": {
            "type": "object",
            "properties": {
                "command": {"type": "string"},
                "vote": {"$ref": "#/definitions/VoteResponse"},
                "config": {"$ref": "#/definitions/ConfigResponse"}
            }
        },
        "ConfigResponse": {
            "type": "object",
            "properties": {
                "owner": {"type": "string"},
                "admins": {"type": "array", "items": {"type": "string"}},
                "vote_titles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "StatsResponse": {
            "type": "object",
            "properties": {
                "in_progress": {"type": "integer"},
                "paused": {"type": "integer"},
                "accepted": {"type": "integer"},
                "rejected": {"type": "integer"}
            }
        },
        "VoteResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "creator": {"type": "string"},
                "state": {"type": "string"},
                "paused": {"type": "boolean"},
                "tally": {"type": "object"},
                "already_voted": {"type": "array", "items": {"type": "string"}},
                "whitelist_enabled": {"type": "boolean"},
                "coin_gate_enabled": {"type": "boolean"},
                "required_coin": {"$ref": "#/definitions/Coin"}
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
	Title:            "Governance API",
	Description:      "Multi-vote governance engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
