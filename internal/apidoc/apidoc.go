// Package apidoc describes the HTTP API as an OpenAPI 3 document.
package apidoc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const (
	Title   = "Product Catalog API"
	Version = "1.0.0"
	// BasePath prefixes every versioned route.
	BasePath = "/api/v1"

	bearerScheme = "bearerAuth"
)

type operation struct {
	method   string
	path     string
	summary  string
	tag      string
	secured  bool
	params   openapi3.Parameters
	body     *openapi3.SchemaRef
	status   int
	response *openapi3.SchemaRef
	errors   []int
}

// Document builds the OpenAPI description of every route.
func Document() *openapi3.T {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       Title,
			Version:     Version,
			Description: "CRUD and query endpoints for the product catalog.",
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Product":        productSchema(),
				"ProductRequest": productRequestSchema(),
				"Error":          errorSchema(),
			},
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	for _, op := range operations() {
		add(spec, op)
	}
	return spec
}

// JSON renders Document as indented JSON.
func JSON() ([]byte, error) {
	data, err := json.MarshalIndent(Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI spec to JSON: %w", err)
	}
	return data, nil
}

// YAML renders Document as YAML.
func YAML() ([]byte, error) {
	data, err := yaml.Marshal(Document())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI spec to YAML: %w", err)
	}
	return data, nil
}

func operations() []operation {
	products := ref("Product")
	productList := arrayOf(products)
	idParam := pathParam("id", "Product identifier")

	return []operation{
		{method: http.MethodPost, path: "/auth/register", summary: "Register a user", tag: "auth",
			body: credentialsSchema(true), status: http.StatusCreated, errors: []int{400, 409}},
		{method: http.MethodPost, path: "/auth/login", summary: "Obtain a bearer token", tag: "auth",
			body: credentialsSchema(false), status: http.StatusOK, response: tokenSchema(), errors: []int{400, 401}},

		{method: http.MethodGet, path: "/products", summary: "List all products", tag: "products", secured: true,
			status: http.StatusOK, response: productList},
		{method: http.MethodGet, path: "/products/{id}", summary: "Get a product", tag: "products", secured: true,
			params: openapi3.Parameters{idParam}, status: http.StatusOK, response: products, errors: []int{400, 404}},
		{method: http.MethodPost, path: "/products", summary: "Create a product", tag: "products", secured: true,
			body: ref("ProductRequest"), status: http.StatusCreated, response: products, errors: []int{400}},
		{method: http.MethodPut, path: "/products/{id}", summary: "Replace a product", tag: "products", secured: true,
			params: openapi3.Parameters{idParam}, body: ref("ProductRequest"), status: http.StatusOK, response: products, errors: []int{400}},
		{method: http.MethodDelete, path: "/products/{id}", summary: "Delete a product", tag: "products", secured: true,
			params: openapi3.Parameters{idParam}, status: http.StatusNoContent, errors: []int{400}},

		{method: http.MethodGet, path: "/products/search", summary: "Search by name, ignoring case", tag: "queries", secured: true,
			params: openapi3.Parameters{queryParam("name", openapi3.TypeString, "Name fragment")},
			status: http.StatusOK, response: productList, errors: []int{400}},
		{method: http.MethodGet, path: "/products/search/stock", summary: "Search by name with stock above a floor", tag: "queries", secured: true,
			params: openapi3.Parameters{
				queryParam("name", openapi3.TypeString, "Name fragment"),
				queryParam("stock", openapi3.TypeInteger, "Exclusive stock floor"),
			},
			status: http.StatusOK, response: productList, errors: []int{400}},
		{method: http.MethodGet, path: "/products/price/min", summary: "Products priced at or above a threshold", tag: "queries", secured: true,
			params:   openapi3.Parameters{queryParam("price", openapi3.TypeNumber, "Inclusive minimum price")},
			status:   http.StatusOK,
			response: productList, errors: []int{400}},
		{method: http.MethodGet, path: "/products/stock/max", summary: "Products with stock below a ceiling", tag: "queries", secured: true,
			params:   openapi3.Parameters{queryParam("stock", openapi3.TypeInteger, "Exclusive stock ceiling")},
			status:   http.StatusOK,
			response: productList, errors: []int{400}},
		{method: http.MethodGet, path: "/products/price/range", summary: "Products priced within a range", tag: "queries", secured: true,
			params: openapi3.Parameters{
				queryParam("minPrice", openapi3.TypeNumber, "Inclusive lower bound"),
				queryParam("maxPrice", openapi3.TypeNumber, "Inclusive upper bound"),
			},
			status: http.StatusOK, response: productList, errors: []int{400}},
	}
}

func add(spec *openapi3.T, op operation) {
	path := BasePath + op.path
	item := spec.Paths.Find(path)
	if item == nil {
		item = &openapi3.PathItem{}
		spec.Paths.Set(path, item)
	}

	o := &openapi3.Operation{
		Summary:    op.summary,
		Tags:       []string{op.tag},
		Parameters: op.params,
		Responses:  &openapi3.Responses{},
	}
	if op.body != nil {
		o.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(op.body)}
	}
	o.Responses.Set(strconv.Itoa(op.status), response(http.StatusText(op.status), op.response))
	for _, code := range op.errors {
		o.Responses.Set(strconv.Itoa(code), response(http.StatusText(code), ref("Error")))
	}
	if op.secured {
		o.Security = &openapi3.SecurityRequirements{{bearerScheme: []string{}}}
		o.Responses.Set("401", response(http.StatusText(http.StatusUnauthorized), ref("Error")))
		o.Responses.Set("403", response(http.StatusText(http.StatusForbidden), ref("Error")))
	}
	item.SetOperation(op.method, o)
}

func response(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	r := &openapi3.Response{Description: &description}
	if schema != nil {
		r.Content = openapi3.NewContentWithJSONSchemaRef(schema)
	}
	return &openapi3.ResponseRef{Value: r}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	s := openapi3.NewArraySchema()
	s.Items = items
	return s.NewRef()
}

func pathParam(name, description string) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewInt64Schema().WithMin(1))
	p.Description = description
	return &openapi3.ParameterRef{Value: p}
}

func queryParam(name, typ, description string) *openapi3.ParameterRef {
	var schema *openapi3.Schema
	switch typ {
	case openapi3.TypeInteger:
		schema = openapi3.NewIntegerSchema()
	case openapi3.TypeNumber:
		schema = openapi3.NewFloat64Schema()
	default:
		schema = openapi3.NewStringSchema()
	}
	p := openapi3.NewQueryParameter(name).WithSchema(schema).WithRequired(true)
	p.Description = description
	return &openapi3.ParameterRef{Value: p}
}

func productSchema() *openapi3.SchemaRef {
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema().WithMaxLength(100)).
		WithProperty("description", openapi3.NewStringSchema().WithMaxLength(255).WithNullable()).
		WithProperty("price", openapi3.NewFloat64Schema()).
		WithProperty("stock", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema()).
		NewRef()
}

func productRequestSchema() *openapi3.SchemaRef {
	price := openapi3.NewFloat64Schema().WithExclusiveMin(true).WithMin(0)
	price.MultipleOf = openapi3.Float64Ptr(0.01)
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
		WithProperty("description", openapi3.NewStringSchema().WithMaxLength(255).WithNullable()).
		WithProperty("price", price).
		WithProperty("stock", openapi3.NewIntegerSchema().WithMin(0)).
		WithRequired([]string{"name", "price", "stock"}).
		NewRef()
}

func errorSchema() *openapi3.SchemaRef {
	s := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	s.Description = "Single error message, or a field to message map for validation failures."
	return s.NewRef()
}

func credentialsSchema(register bool) *openapi3.SchemaRef {
	s := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema())
	required := []string{"username", "password"}
	if register {
		s = s.WithProperty("email", openapi3.NewStringSchema().WithFormat("email"))
		required = append(required, "email")
	}
	return s.WithRequired(required).NewRef()
}

func tokenSchema() *openapi3.SchemaRef {
	return openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("token", openapi3.NewStringSchema()).
		NewRef()
}
