package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
	"github.com/Abraxas-365/wacloud/transport"
)

const (
	ParameterFormatNamed      = "NAMED"
	ParameterFormatPositional = "POSITIONAL"
)

var (
	namedParamPattern      = regexp.MustCompile(`\{\{([^{}]+)\}\}`)
	positionalParamPattern = regexp.MustCompile(`\{\{(\d+)\}\}`)
)

// Template is a message template as returned by the management API
type Template struct {
	Name            string                 `json:"name"`
	Language        string                 `json:"language"`
	Status          string                 `json:"status"`
	Category        string                 `json:"category"`
	ID              string                 `json:"id"`
	ParameterFormat string                 `json:"parameter_format,omitempty"`
	Components      []TemplateComponentDef `json:"components"`
}

type TemplateComponentDef struct {
	Type    string           `json:"type"`             // HEADER, BODY, FOOTER, BUTTONS
	Format  string           `json:"format,omitempty"` // TEXT, IMAGE, VIDEO, DOCUMENT
	Text    string           `json:"text,omitempty"`
	Example *TemplateExample `json:"example,omitempty"`
	Buttons []TemplateButton `json:"buttons,omitempty"`
}

type TemplateExample struct {
	HeaderText          []string             `json:"header_text,omitempty"`
	BodyText            [][]string           `json:"body_text,omitempty"`
	BodyTextNamedParams []BodyTextNamedParam `json:"body_text_named_params,omitempty"`
}

type BodyTextNamedParam struct {
	ParamName string `json:"param_name"`
	Example   string `json:"example"`
}

type TemplateButton struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Language selects a template translation
type Language struct {
	Code string `json:"code" validate:"required"`
}

// TemplateBody is the template object of an outbound template message
type TemplateBody struct {
	Name       string              `json:"name" validate:"required"`
	Language   Language            `json:"language"`
	Components []TemplateComponent `json:"components,omitempty" validate:"dive"`
}

type TemplateComponent struct {
	Type       string              `json:"type" validate:"required,oneof=header body button"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Parameters []TemplateParameter `json:"parameters,omitempty" validate:"dive"`
}

type TemplateParameter struct {
	Type          string `json:"type" validate:"required"`
	ParameterName string `json:"parameter_name,omitempty"`
	Text          string `json:"text,omitempty"`
	Payload       string `json:"payload,omitempty"`
}

// TemplateList is one page of templates
type TemplateList struct {
	Data   []Template `json:"data"`
	Paging *Paging    `json:"paging,omitempty"`
}

type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// ListOptions filters ListTemplates
type ListOptions struct {
	Name     string
	Language string
	Status   string
	Limit    int
	After    string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Language != "" {
		q.Set("language", o.Language)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.After != "" {
		q.Set("after", o.After)
	}
	return q
}

// ListTemplates returns one page of the business account's templates
func (c *Client) ListTemplates(ctx context.Context, opts ListOptions) (*TemplateList, error) {
	waba, err := c.businessAccount()
	if err != nil {
		return nil, err
	}

	var list TemplateList
	err = c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   waba + "/message_templates",
		Query:  opts.query(),
	}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func templateCacheKey(name, language string) string {
	return name + "_" + language
}

// GetTemplate fetches a template by name and language, from cache when enabled
func (c *Client) GetTemplate(ctx context.Context, name, language string) (*Template, error) {
	if name == "" {
		return nil, errx.Validation("name", "template name is required")
	}

	key := templateCacheKey(name, language)
	if c.cfg.CacheTemplates {
		c.cacheMu.RLock()
		cached, ok := c.cache[key]
		c.cacheMu.RUnlock()
		if ok && c.now().Before(cached.expiresAt) {
			tmpl := cached.template
			return &tmpl, nil
		}
	}

	list, err := c.ListTemplates(ctx, ListOptions{Name: name, Language: language})
	if err != nil {
		return nil, err
	}

	// The name filter is a prefix match on the API side
	var found *Template
	for i := range list.Data {
		t := list.Data[i]
		if t.Name == name && (language == "" || t.Language == language) {
			found = &t
			break
		}
	}
	if found == nil {
		return nil, Registry.New(ErrTemplateNotFound,
			errx.WithDetail("name", name),
			errx.WithDetail("language", language))
	}

	if c.cfg.CacheTemplates {
		c.cacheMu.Lock()
		c.cache[key] = templateCacheEntry{template: *found, expiresAt: c.now().Add(c.cfg.TemplateCacheTTL)}
		c.cacheMu.Unlock()
	}

	logx.Debug("whatsapp: template %s (%s) format=%s", found.Name, found.Language, found.ParameterFormat)
	return found, nil
}

// DeleteTemplate deletes every language of the named template
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	if name == "" {
		return errx.Validation("name", "template name is required")
	}
	waba, err := c.businessAccount()
	if err != nil {
		return err
	}

	var resp successResponse
	err = c.do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   waba + "/message_templates",
		Query:  url.Values{"name": {name}},
	}, &resp)
	if err != nil {
		return err
	}

	c.InvalidateTemplate(name)
	return nil
}

// InvalidateTemplate drops every cached language of the named template
func (c *Client) InvalidateTemplate(name string) {
	prefix := name + "_"
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
		}
	}
}

// BuildTemplateComponents turns parameter values into send components for tmpl.
// NAMED templates take each {{name}} in order of first appearance. Positional templates
// consume the values sorted by numeric key, header first and then body.
func BuildTemplateComponents(tmpl *Template, params map[string]any) []TemplateComponent {
	if tmpl == nil || len(params) == 0 {
		return nil
	}
	if strings.EqualFold(tmpl.ParameterFormat, ParameterFormatNamed) {
		return buildNamed(tmpl, params)
	}
	return buildPositional(tmpl, params)
}

func buildNamed(tmpl *Template, params map[string]any) []TemplateComponent {
	var components []TemplateComponent
	for _, def := range tmpl.Components {
		kind, ok := textComponent(def)
		if !ok {
			continue
		}
		if p := ExtractNamedParameters(def.Text, params); len(p) > 0 {
			components = append(components, TemplateComponent{Type: kind, Parameters: p})
		}
	}
	return components
}

func buildPositional(tmpl *Template, params map[string]any) []TemplateComponent {
	values := orderedValues(params)
	next := 0

	var components []TemplateComponent
	for _, def := range tmpl.Components {
		kind, ok := textComponent(def)
		if !ok {
			continue
		}
		count := CountPositionalParameters(def.Text)
		if count == 0 {
			continue
		}

		component := TemplateComponent{Type: kind}
		for i := 0; i < count && next < len(values); i++ {
			component.Parameters = append(component.Parameters, TemplateParameter{Type: "text", Text: values[next]})
			next++
		}
		components = append(components, component)
	}
	return components
}

// textComponent reports the send-side type of a component that can carry text parameters
func textComponent(def TemplateComponentDef) (string, bool) {
	switch strings.ToUpper(def.Type) {
	case "HEADER":
		return "header", strings.EqualFold(def.Format, "TEXT") && def.Text != ""
	case "BODY":
		return "body", def.Text != ""
	}
	return "", false
}

func orderedValues(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		if errI == nil && errJ == nil {
			return ni < nj
		}
		return keys[i] < keys[j]
	})

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = fmt.Sprintf("%v", params[k])
	}
	return values
}

// ExtractNamedParameters returns one parameter per distinct {{name}} in text that has a value
func ExtractNamedParameters(text string, params map[string]any) []TemplateParameter {
	if text == "" || len(params) == 0 {
		return nil
	}

	var out []TemplateParameter
	seen := make(map[string]bool)
	for _, match := range namedParamPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		if seen[name] {
			continue
		}
		if value, ok := params[name]; ok {
			out = append(out, TemplateParameter{Type: "text", ParameterName: name, Text: fmt.Sprintf("%v", value)})
			seen[name] = true
		}
	}
	return out
}

// CountPositionalParameters returns the highest {{n}} index in text
func CountPositionalParameters(text string) int {
	highest := 0
	for _, match := range positionalParamPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(match[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// ResolveTemplateText substitutes {{key}} placeholders with their values
func ResolveTemplateText(text string, params map[string]any) string {
	resolved := text
	for key, value := range params {
		resolved = strings.ReplaceAll(resolved, "{{"+key+"}}", fmt.Sprintf("%v", value))
	}
	return resolved
}

// RenderTemplate resolves the header, body and footer of tmpl into the text a recipient sees
func RenderTemplate(tmpl *Template, params map[string]any) string {
	var header, body, footer string
	for _, def := range tmpl.Components {
		switch strings.ToUpper(def.Type) {
		case "HEADER":
			header = ResolveTemplateText(def.Text, params)
		case "BODY":
			body = ResolveTemplateText(def.Text, params)
		case "FOOTER":
			footer = def.Text
		}
	}

	var sb strings.Builder
	if header != "" {
		sb.WriteString(header + "\n\n")
	}
	sb.WriteString(body)
	if footer != "" {
		sb.WriteString("\n\n" + footer)
	}
	return sb.String()
}
