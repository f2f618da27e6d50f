//go:build generate

package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	iyaml "github.com/invopop/yaml"
	"github.com/mcuadros/go-defaults"
	"github.com/theopenlane/utils/envparse"

	"github.com/theopenlane/spectra/config"
	"github.com/theopenlane/spectra/internal/brand"
	"github.com/theopenlane/spectra/internal/intel"
	"github.com/theopenlane/spectra/internal/urlintel"
)

const (
	tagName      = "koanf"
	skipper      = "-"
	defaultTag   = "default"
	sensitiveTag = "sensitive"
	// varPrefix matches config.EnvPrefix without its separator
	varPrefix      = "SPECTRA"
	modulePath     = "github.com/theopenlane/spectra/"
	ownerReadWrite = 0600
)

// commentPackages are parsed for field descriptions
var commentPackages = []string{
	"./config",
}

// artifact is one generated file
type artifact struct {
	path   string
	render func(cfg *config.Config) ([]byte, error)
}

func main() {
	cfg := buildDefaultConfig()

	comments, err := buildCommentMap(commentPackages)
	if err != nil {
		panic(err)
	}

	artifacts := []artifact{
		{path: "./jsonschema/spectra.config.json", render: func(c *config.Config) ([]byte, error) { return renderSchema(c, comments) }},
		{path: "./config/config.example.yaml", render: renderYAML},
		{path: "./config/.env.example", render: renderEnv},
		{path: "./config/feed_config.example.json", render: renderFeeds},
	}

	for _, a := range artifacts {
		data, err := a.render(cfg)
		if err != nil {
			panic(fmt.Errorf("rendering %s: %w", a.path, err))
		}

		if err := os.WriteFile(a.path, data, ownerReadWrite); err != nil {
			panic(fmt.Errorf("writing %s: %w", a.path, err))
		}

		fmt.Printf("wrote %s\n", a.path)
	}
}

// buildDefaultConfig returns the config with struct defaults plus the built-in engine lists,
// so the example files show every brand and suffix the engine protects
func buildDefaultConfig() *config.Config {
	cfg := &config.Config{}
	defaults.SetDefaults(cfg)

	cfg.Engine.Brands = append([]string(nil), brand.DefaultBrands...)
	cfg.Engine.HighRiskTLDs = append([]string(nil), urlintel.DefaultHighRiskTLDs...)

	return cfg
}

func buildCommentMap(packages []string) (map[string]string, error) {
	r := &jsonschema.Reflector{}

	for _, pkg := range packages {
		if err := r.AddGoComments(modulePath, pkg); err != nil {
			return nil, fmt.Errorf("failed to add go comments for package %s: %w", pkg, err)
		}
	}

	if r.CommentMap == nil {
		return map[string]string{}, nil
	}

	return r.CommentMap, nil
}

func renderSchema(cfg *config.Config, comments map[string]string) ([]byte, error) {
	r := jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               tagName,
		CommentMap:                 comments,
	}

	return json.MarshalIndent(r.Reflect(cfg), "", "  ")
}

func renderYAML(cfg *config.Config) ([]byte, error) {
	return iyaml.Marshal(structToMap(reflect.ValueOf(cfg).Elem()))
}

func renderFeeds(*config.Config) ([]byte, error) {
	return json.MarshalIndent(intel.DefaultFeedConfig(), "", "  ")
}

// renderEnv lists every variable config.Load reads; sensitive values are left blank
func renderEnv(cfg *config.Config) ([]byte, error) {
	cp := envparse.Config{
		FieldTagName: tagName,
		Skipper:      skipper,
	}

	vars, err := cp.GatherEnvInfo(varPrefix, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to gather environment info: %w", err)
	}

	var b strings.Builder

	for _, v := range vars {
		if v.Tags.Get(sensitiveTag) == "true" {
			fmt.Fprintf(&b, "# %s is sensitive\n%s=\"\"\n", v.Key, v.Key)
			continue
		}

		value := v.Tags.Get(defaultTag)
		if isDuration(v.Type) && value != "" {
			if d, err := time.ParseDuration(value); err == nil {
				value = d.String()
			}
		}

		fmt.Fprintf(&b, "%s=\"%s\"\n", v.Key, value)
	}

	return []byte(b.String()), nil
}

// structToMap keys fields by their koanf tag and renders durations as strings
func structToMap(v reflect.Value) map[string]any {
	v = reflect.Indirect(v)
	out := make(map[string]any, v.NumField())

	for i := range v.NumField() {
		field := v.Type().Field(i)

		key := field.Tag.Get(tagName)
		if !field.IsExported() || key == "" || key == skipper {
			continue
		}

		out[key] = yamlValue(v.Field(i))
	}

	return out
}

func yamlValue(v reflect.Value) any {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	switch {
	case !v.IsValid():
		return nil
	case isDuration(v.Type()):
		return time.Duration(v.Int()).String()
	case v.Kind() == reflect.Struct:
		return structToMap(v)
	case v.Kind() == reflect.Slice:
		items := make([]any, 0, v.Len())
		for i := range v.Len() {
			items = append(items, yamlValue(v.Index(i)))
		}

		return items
	default:
		return v.Interface()
	}
}

func isDuration(t reflect.Type) bool {
	return t == reflect.TypeFor[time.Duration]()
}
