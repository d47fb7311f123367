package aior

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OpenAPIVersion is the version of the OpenAPI document emitted by Spec.
const OpenAPIVersion = "3.0.2"

// OpenAPISpec is the top-level OpenAPI 3.0 document.
type OpenAPISpec struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       OpenAPIInfo         `json:"info" yaml:"info"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components Components          `json:"components" yaml:"components"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// Components holds the shared schema definitions, keyed by schema name.
type Components struct {
	Schemas map[string]JSONSchema `json:"schemas" yaml:"schemas"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem map[string]*OperationObject

// OperationObject describes a single API operation on a path.
type OperationObject struct {
	Summary     string                    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string                    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string                  `json:"tags,omitempty" yaml:"tags,omitempty"`
	OperationID string                    `json:"operationId" yaml:"operationId"`
	Parameters  []ParameterObject         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBodyObject        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]ResponseObject `json:"responses,omitempty" yaml:"responses,omitempty"`
	Deprecated  bool                      `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// ParameterObject describes one query, header or path parameter.
type ParameterObject struct {
	Name        string     `json:"name" yaml:"name"`
	In          Location   `json:"in" yaml:"in"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool       `json:"required" yaml:"required"`
	Schema      JSONSchema `json:"schema" yaml:"schema"`
}

// RequestBodyObject describes the request body.
type RequestBodyObject struct {
	Content  map[string]MediaTypeObject `json:"content" yaml:"content"`
	Required bool                       `json:"required" yaml:"required"`
}

// MediaTypeObject is a media type entry with an optional schema.
type MediaTypeObject struct {
	Schema *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ResponseObject describes a single response.
type ResponseObject struct {
	Description string                     `json:"description" yaml:"description"`
	Content     map[string]MediaTypeObject `json:"content,omitempty" yaml:"content,omitempty"`
}

const requestBodyContentType = "application/json"

// Spec generates the OpenAPI document from the registered routes. It reads
// only registration-time descriptors, so repeated calls return equal
// documents. Raw operations and WebSocket resources are not documented.
func (r *Router) Spec() OpenAPISpec {
	spec := OpenAPISpec{
		OpenAPI: OpenAPIVersion,
		Info: OpenAPIInfo{
			Title:   r.title,
			Version: r.version,
		},
		Paths:      make(map[string]PathItem),
		Components: Components{Schemas: make(map[string]JSONSchema)},
	}
	reg := &componentRegistry{schemas: spec.Components.Schemas}

	for _, route := range r.table.Routes() {
		res := route.Resource
		if res.IsWebSocket() {
			continue
		}
		path := route.Template.String()
		for _, method := range res.Methods() {
			op, _ := res.Operation(method)
			if op.raw != nil {
				continue
			}
			if spec.Paths[path] == nil {
				spec.Paths[path] = make(PathItem)
			}
			spec.Paths[path][strings.ToLower(method)] = buildOperation(route, op, reg)
		}
	}
	return spec
}

// buildOperation documents one operation, registering every schema it
// references with reg.
func buildOperation(route *Route, op *Operation, reg *componentRegistry) *OperationObject {
	doc := &OperationObject{
		Summary:     op.summary,
		Description: op.desc,
		OperationID: op.operationID,
		Deprecated:  op.deprecated,
	}
	if doc.Summary == "" {
		doc.Summary = operationSummary(route.Resource.Name(), op.method)
	}
	if doc.OperationID == "" {
		doc.OperationID = operationID(route.Template.String(), op.method)
	}
	if tags := append(append([]string(nil), route.tags...), op.tags...); len(tags) > 0 {
		doc.Tags = tags
	}

	for _, p := range op.req.params {
		if p.in == InBody {
			schema := typeToSchema(p.typ, reg.add)
			doc.RequestBody = &RequestBodyObject{
				Content:  map[string]MediaTypeObject{requestBodyContentType: {Schema: &schema}},
				Required: true,
			}
			continue
		}
		reg.add(p.schema)
		schema := p.schema.describe(reg.add)
		schema.Required = nil
		doc.Parameters = append(doc.Parameters, ParameterObject{
			Name:        p.name,
			In:          p.in,
			Description: p.doc,
			Required:    p.in == InPath,
			Schema:      schema,
		})
	}

	if op.returns != nil {
		resp := ResponseObject{Description: http.StatusText(http.StatusOK)}
		if t := op.returns.typ; t != nil && t != reflect.TypeFor[Void]() {
			schema := typeToSchema(t, reg.add)
			resp.Content = map[string]MediaTypeObject{ContentTypeJSON: {Schema: &schema}}
		}
		doc.Responses = map[string]ResponseObject{strconv.Itoa(http.StatusOK): resp}
	}
	return doc
}

// componentRegistry collects named schemas for components.schemas. The first
// schema registered under a name wins.
type componentRegistry struct {
	schemas map[string]JSONSchema
}

func (c *componentRegistry) add(s *Schema) {
	if s == nil || s.name == "" {
		return
	}
	if _, ok := c.schemas[s.name]; ok {
		return
	}
	// Placeholder so self-referencing types terminate.
	c.schemas[s.name] = JSONSchema{}
	c.schemas[s.name] = s.describe(c.add)
}

// operationID derives an operationId from the path template and method:
// every non-word character becomes an underscore, outer underscores are
// trimmed, and "__" plus the lower-case method is appended.
func operationID(template, method string) string {
	base := strings.Trim(nonWord.ReplaceAllString(template, "_"), "_")
	return base + "__" + strings.ToLower(method)
}

// operationSummary derives a summary such as "Get User Info" from the
// resource name "UserInfoHandler" and the method.
func operationSummary(resource, method string) string {
	name := strings.TrimSuffix(resource, "Handler")
	verb := cases.Title(language.English).String(strings.ToLower(method))
	if name == "" {
		return verb
	}
	return verb + " " + strings.Join(splitWords(name), " ")
}

// splitWords splits an identifier on case boundaries, keeping acronyms and
// trailing digits attached: "HTTPUserSession2" → HTTP, User, Session2.
func splitWords(s string) []string {
	runes := []rune(s)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsUpper(cur) &&
			(unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])))
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}
