// Package docs holds the OpenAPI specification for the exchange-core
// HTTP API and registers it with swag at import time, mirroring what
// `swag init` would emit from the @Summary/@Router annotations on the
// handlers in internal/api. Registration happens in init() so
// gin-swagger's handler, wired in internal/api/server.go, has a spec
// to serve the moment the blank import runs.
package docs

import "github.com/swaggo/swag"

const swaggerSpec = `{
  "swagger": "2.0",
  "info": {
    "title": "Exchange Core API",
    "description": "Central-limit order book matching engine and balance ledger.",
    "version": "1.0",
    "contact": {}
  },
  "basePath": "/api/v1",
  "schemes": ["http", "https"],
  "paths": {
    "/public/register": {
      "post": {
        "tags": ["Public"],
        "summary": "Register a user",
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
      }
    },
    "/public/instrument": {
      "get": {
        "tags": ["Public"],
        "summary": "List instruments",
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/public/orderbook/{ticker}": {
      "get": {
        "tags": ["Public"],
        "summary": "Get order book depth",
        "parameters": [
          {"name": "ticker", "in": "path", "required": true, "type": "string"},
          {"name": "limit", "in": "query", "required": false, "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
      }
    },
    "/public/transactions/{ticker}": {
      "get": {
        "tags": ["Public"],
        "summary": "List recent trades",
        "parameters": [
          {"name": "ticker", "in": "path", "required": true, "type": "string"},
          {"name": "limit", "in": "query", "required": false, "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
      }
    },
    "/balance": {
      "get": {
        "tags": ["Account"],
        "summary": "Get caller's balances",
        "security": [{"ApiKeyAuth": []}],
        "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
      }
    },
    "/order": {
      "post": {
        "tags": ["Order"],
        "summary": "Submit an order",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}}
      },
      "get": {
        "tags": ["Order"],
        "summary": "List caller's non-cancelled orders",
        "security": [{"ApiKeyAuth": []}],
        "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
      }
    },
    "/order/{id}": {
      "get": {
        "tags": ["Order"],
        "summary": "Get an order by id",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
      },
      "delete": {
        "tags": ["Order"],
        "summary": "Cancel an order",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
      }
    },
    "/admin/instrument": {
      "post": {
        "tags": ["Admin"],
        "summary": "Create an instrument",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
      }
    },
    "/admin/instrument/{ticker}": {
      "delete": {
        "tags": ["Admin"],
        "summary": "Delete an instrument",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "ticker", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
      }
    },
    "/admin/balance/deposit": {
      "post": {
        "tags": ["Admin"],
        "summary": "Credit a user's balance",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
      }
    },
    "/admin/balance/withdraw": {
      "post": {
        "tags": ["Admin"],
        "summary": "Debit a user's balance",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
      }
    },
    "/admin/user/{id}": {
      "delete": {
        "tags": ["Admin"],
        "summary": "Delete a user, cancelling their open orders first",
        "security": [{"ApiKeyAuth": []}],
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
      }
    }
  },
  "securityDefinitions": {
    "ApiKeyAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header",
      "description": "Format: TOKEN <api_key>"
    }
  }
}`

type spec struct{}

func (spec) ReadDoc() string { return swaggerSpec }

func init() {
	swag.Register("swagger", spec{})
}
