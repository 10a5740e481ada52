// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/users/register": {
            "post": {
                "tags": ["users"], "summary": "Register a user",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/users/login": {
            "post": {
                "tags": ["users"], "summary": "Log in and receive a bearer token",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["users"], "summary": "Fetch a user", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/accounts": {
            "get": {
                "tags": ["accounts"], "summary": "List the caller's accounts", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Account"}}}}
            },
            "post": {
                "tags": ["accounts"], "summary": "Open an account for the caller", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenAccountRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Account"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/accounts/{id}": {
            "get": {
                "tags": ["accounts"], "summary": "Fetch one of the caller's accounts", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Account"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/accounts/{id}/transactions": {
            "get": {
                "tags": ["accounts"], "summary": "Transaction history of one account, newest first", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Transaction"}}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/accounts/deposit": {
            "post": {
                "tags": ["movements"], "summary": "Charge a payment method and credit an account", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "Idempotency-Key", "in": "header", "type": "string"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DepositRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/DepositResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}, "402": {"description": "Payment Declined", "schema": {"$ref": "#/definitions/Error"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}, "500": {"description": "Needs Reconciliation", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/accounts/withdrawal": {
            "post": {
                "tags": ["movements"], "summary": "Debit an account and pay out to its destination", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "Idempotency-Key", "in": "header", "type": "string"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WithdrawalRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/WithdrawalResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}, "402": {"description": "Payout Failed", "schema": {"$ref": "#/definitions/Error"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}, "500": {"description": "Needs Reconciliation", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/transactions": {
            "get": {
                "tags": ["transactions"], "summary": "Transactions touching any of the caller's accounts", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "limit", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Transaction"}}}}
            },
            "post": {
                "tags": ["movements"], "summary": "Move money between two accounts", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "Idempotency-Key", "in": "header", "type": "string"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransferRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/TransferResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}, "500": {"description": "Transfer Aborted", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/transactions/{id}": {
            "get": {
                "tags": ["transactions"], "summary": "Fetch a transaction", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Transaction"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}
            }
        }
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"error": {"type": "string"}, "message": {"type": "string"}}},
        "RegisterRequest": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "LoginResponse": {"type": "object", "properties": {"message": {"type": "string"}, "token": {"type": "string"}}},
        "User": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "createdAt": {"type": "string"}}},
        "OpenAccountRequest": {"type": "object", "properties": {"accountNumber": {"type": "string"}, "accountType": {"type": "string", "enum": ["Savings", "Checking", "Loan"]}, "balance": {"type": "string"}, "payoutDestination": {"type": "string"}}},
        "Account": {"type": "object", "properties": {"id": {"type": "integer"}, "accountNumber": {"type": "string"}, "accountType": {"type": "string"}, "balance": {"type": "string"}, "userId": {"type": "integer"}, "payoutDestination": {"type": "string"}, "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "DepositRequest": {"type": "object", "properties": {"accountId": {"type": "integer"}, "amount": {"type": "string"}, "paymentMethodToken": {"type": "string"}}},
        "WithdrawalRequest": {"type": "object", "properties": {"accountId": {"type": "integer"}, "amount": {"type": "string"}}},
        "TransferRequest": {"type": "object", "properties": {"fromAccountId": {"type": "integer"}, "toAccountId": {"type": "integer"}, "amount": {"type": "string"}}},
        "Transaction": {"type": "object", "properties": {"id": {"type": "integer"}, "type": {"type": "string", "enum": ["Deposit", "Withdrawal", "Transfer"]}, "amount": {"type": "string"}, "fromAccountId": {"type": "integer"}, "toAccountId": {"type": "integer"}, "reference": {"type": "string"}, "date": {"type": "string"}}},
        "DepositResponse": {"type": "object", "properties": {"message": {"type": "string"}, "transaction": {"$ref": "#/definitions/Transaction"}, "confirmationToken": {"type": "string"}}},
        "WithdrawalResponse": {"type": "object", "properties": {"message": {"type": "string"}, "transaction": {"$ref": "#/definitions/Transaction"}, "payoutId": {"type": "string"}}},
        "TransferResponse": {"type": "object", "properties": {"message": {"type": "string"}, "transaction": {"$ref": "#/definitions/Transaction"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Finacle Banking API",
	Description:      "Accounts, deposits, withdrawals and transfers over a fixed-point ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
