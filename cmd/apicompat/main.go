// Package main checks that a revision of the JobMandu API stays usable by
// clients built against an earlier snapshot.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitronepal/JobMandu/docs"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

type operation struct {
	Responses map[string]struct{}
	// Required holds "in:name" for every required parameter.
	Required map[string]struct{}
	Secured  bool
}

type apiSpec struct {
	Paths map[string]map[string]operation
}

func main() {
	basePath := flag.String("base", "", "snapshot of the API spec clients were built against (YAML or JSON)")
	revisionPath := flag.String("revision", "", "spec to check; defaults to the one compiled into the server")
	snapshot := flag.String("snapshot", "", "write the compiled spec as YAML to this path and exit")
	flag.Parse()

	if *snapshot != "" {
		if err := writeSnapshot(*snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *snapshot)
		return
	}

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision <path>] | -snapshot <path>")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	var revision apiSpec
	if *revisionPath != "" {
		revision, err = loadFile(*revisionPath)
	} else {
		revision, err = parseSpec([]byte(compiledDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Printf("API compatible: %d paths checked\n", len(base.Paths))
}

func compiledDoc() string {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return docs.SwaggerInfo.ReadDoc()
	}
	return doc
}

func writeSnapshot(path string) error {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(compiledDoc()), &doc); err != nil {
		return err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func loadFile(path string) (apiSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiSpec{}, err
	}
	return parseSpec(raw)
}

// parseSpec reads a Swagger 2.0 or OpenAPI 3 document. JSON is valid YAML, so
// one decoder covers both.
func parseSpec(raw []byte) (apiSpec, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return apiSpec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return apiSpec{}, errors.New("paths is not an object")
	}

	_, globalSecurity := doc["security"]
	spec := apiSpec{Paths: make(map[string]map[string]operation)}

	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			op := operation{
				Responses: make(map[string]struct{}),
				Required:  make(map[string]struct{}),
				Secured:   globalSecurity,
			}
			if sec, exists := methodMap["security"]; exists {
				list, _ := sec.([]any)
				op.Secured = len(list) > 0
			}
			if responses, ok := toMap(methodMap["responses"]); ok {
				for code := range responses {
					if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
						op.Responses[normalized] = struct{}{}
					}
				}
			}
			params, _ := methodMap["parameters"].([]any)
			for _, p := range params {
				param, ok := toMap(p)
				if !ok {
					continue
				}
				if required, _ := param["required"].(bool); required {
					op.Required[fmt.Sprintf("%v:%v", param["in"], param["name"])] = struct{}{}
				}
			}
			ops[method] = op
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}

	return spec, nil
}

func toMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// compare lists changes in revision that break clients of base: removed
// paths, operations or response codes, new required parameters, and
// operations that started requiring authentication.
func compare(base, revision apiSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			label := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+label)
				continue
			}

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", label, strings.ToUpper(code)))
				}
			}
			for param := range revOp.Required {
				if _, ok := baseOp.Required[param]; !ok {
					issues = append(issues, fmt.Sprintf("new required parameter: %s -> %s", label, param))
				}
			}
			if revOp.Secured && !baseOp.Secured {
				issues = append(issues, "now requires authentication: "+label)
			}
		}
	}

	sort.Strings(issues)
	return issues
}
