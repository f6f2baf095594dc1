// Package main exports the embedded OpenAPI document and checks that a
// revision stays backward compatible with a published base.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "interu/docs"

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
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  openapi-compat export [-out swagger.yaml]")
	fmt.Fprintln(os.Stderr, "  openapi-compat check -base <path> [-revision <path>]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "", "output file (stdout when empty)")
		_ = fs.Parse(os.Args[2:])
		if err := export(*out); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		basePath := fs.String("base", "", "base OpenAPI swagger.yaml path")
		revisionPath := fs.String("revision", "", "revision swagger.yaml path (embedded document when empty)")
		_ = fs.Parse(os.Args[2:])
		os.Exit(check(*basePath, *revisionPath))
	default:
		usage()
		os.Exit(2)
	}
}

func export(out string) error {
	raw, err := embeddedYAML()
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	return os.WriteFile(out, raw, 0o644)
}

func check(basePath, revisionPath string) int {
	if strings.TrimSpace(basePath) == "" {
		usage()
		return 2
	}

	baseSpec, err := loadSpecFile(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		return 1
	}

	var revisionSpec parsedSpec
	if strings.TrimSpace(revisionPath) == "" {
		raw, rerr := embeddedYAML()
		if rerr == nil {
			revisionSpec, rerr = parseSpec(raw)
		}
		err = rerr
	} else {
		revisionSpec, err = loadSpecFile(revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		return 1
	}

	issues := compare(baseSpec, revisionSpec)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		return 1
	}

	fmt.Println("openapi compatibility check passed")
	return 0
}

// embeddedYAML renders the registered swag document as YAML. JSON is valid
// YAML, so the document is decoded with the YAML parser and re-encoded.
func embeddedYAML() ([]byte, error) {
	doc, err := swag.ReadDoc()
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal([]byte(doc), &tree); err != nil {
		return nil, fmt.Errorf("decode embedded document: %w", err)
	}
	return yaml.Marshal(tree)
}

func loadSpecFile(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}

func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}
		if ops := parseOperations(pathOps); len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

func parseOperations(pathOps map[string]interface{}) map[string]operation {
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

		responses := make(map[string]struct{})
		if responsesMap, ok := toMap(methodMap["responses"]); ok {
			for code := range responsesMap {
				if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
					responses[normalized] = struct{}{}
				}
			}
		}
		ops[method] = operation{Responses: responses}
	}
	return ops
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// compare lists every path, operation or documented response code that the
// base publishes and the revision dropped.
func compare(base, revision parsedSpec) []string {
	var issues []string
	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}
		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
