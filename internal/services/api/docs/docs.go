// Package docs registers the OpenAPI document served at /api/docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "paths": {
    "/meta/health": {
      "get": {
        "tags": ["Meta"],
        "summary": "Health check",
        "operationId": "metaHealth",
        "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthResponse"}}}}}
      }
    },
    "/meta/ready": {
      "get": {
        "tags": ["Meta"],
        "summary": "Readiness check across dependencies",
        "operationId": "metaReady",
        "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}}}
      }
    },
    "/meta/version": {
      "get": {
        "tags": ["Meta"],
        "summary": "Build and version info",
        "operationId": "metaVersion",
        "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BuildInfo"}}}}}
      }
    },
    "/meta/service": {
      "get": {
        "tags": ["Meta"],
        "summary": "Service info and uptime",
        "operationId": "metaService",
        "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ServiceResponse"}}}}}
      }
    },
    "/catalog/comics/recent": {
      "get": {
        "tags": ["Catalog"],
        "summary": "Most recently released comics",
        "operationId": "catalogRecent",
        "parameters": [
          {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100, "default": 30}}
        ],
        "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ItemList"}}}}}
      }
    },
    "/catalog/{type}": {
      "get": {
        "tags": ["Catalog"],
        "summary": "Paged listing in natural order",
        "operationId": "catalogList",
        "parameters": [
          {"$ref": "#/components/parameters/EntityType"},
          {"$ref": "#/components/parameters/Page"},
          {"$ref": "#/components/parameters/PerPage"}
        ],
        "responses": {
          "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ItemList"}}}},
          "404": {"description": "Unknown entity type", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
          "416": {"description": "Page past the last one", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        }
      }
    },
    "/catalog/{type}/search": {
      "get": {
        "tags": ["Catalog"],
        "summary": "Fuzzy search over characters, comics or series",
        "operationId": "catalogSearch",
        "parameters": [
          {"$ref": "#/components/parameters/EntityType"},
          {"name": "q", "in": "query", "schema": {"type": "string", "maxLength": 200}},
          {"$ref": "#/components/parameters/Page"},
          {"$ref": "#/components/parameters/PerPage"}
        ],
        "responses": {
          "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ItemList"}}}},
          "422": {"description": "Type is not searchable", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
          "503": {"description": "Search index unreachable", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        }
      }
    },
    "/catalog/{type}/{id}": {
      "get": {
        "tags": ["Catalog"],
        "summary": "Entity details with its related entities",
        "operationId": "catalogDetails",
        "parameters": [
          {"$ref": "#/components/parameters/EntityType"},
          {"name": "id", "in": "path", "required": true, "schema": {"type": "integer", "format": "int64"}}
        ],
        "responses": {
          "200": {"description": "OK", "content": {"application/json": {"schema": {"type": "object"}}}},
          "404": {"description": "Not found", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        }
      }
    }
  },
  "components": {
    "parameters": {
      "EntityType": {"name": "type", "in": "path", "required": true, "schema": {"type": "string", "enum": ["characters", "comics", "creators", "series"]}},
      "Page": {"name": "page", "in": "query", "schema": {"type": "integer", "minimum": 1, "default": 1}},
      "PerPage": {"name": "per_page", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100}}
    },
    "schemas": {
      "Item": {
        "type": "object",
        "properties": {
          "id": {"type": "integer", "format": "int64", "example": 1009610},
          "title": {"type": "string", "example": "Spider-Man (Peter Parker)"},
          "thumbnail": {"type": "string"},
          "date": {"type": "string", "format": "date-time"}
        }
      },
      "Page": {
        "type": "object",
        "properties": {
          "page": {"type": "integer"},
          "perPage": {"type": "integer"},
          "totalItems": {"type": "integer"},
          "totalPages": {"type": "integer"},
          "startPage": {"type": "integer"},
          "endPage": {"type": "integer"}
        }
      },
      "ItemList": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"type": "array", "items": {"$ref": "#/components/schemas/Item"}},
          "page": {"$ref": "#/components/schemas/Page"}
        }
      },
      "HealthResponse": {
        "type": "object",
        "properties": {
          "ok": {"type": "boolean"},
          "service": {"type": "string"},
          "started": {"type": "string"},
          "now": {"type": "string"}
        }
      },
      "ReadyCheck": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "status": {"type": "string", "enum": ["ok", "fail", "skipped"]},
          "error": {"type": "string"}
        }
      },
      "ReadyResponse": {
        "type": "object",
        "properties": {
          "status": {"type": "string", "enum": ["ok", "degraded", "fail"]},
          "checks": {"type": "array", "items": {"$ref": "#/components/schemas/ReadyCheck"}},
          "now": {"type": "string"}
        }
      },
      "ServiceResponse": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "started": {"type": "string"},
          "uptime": {"type": "integer"}
        }
      },
      "BuildInfo": {
        "type": "object",
        "properties": {
          "service": {"type": "string"},
          "version": {"type": "string"},
          "commit": {"type": "string"},
          "date": {"type": "string"},
          "go": {"type": "string"}
        }
      }
    }
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "comicvault API",
	Description:      "Read API over the mirrored comics catalog",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
