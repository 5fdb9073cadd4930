package locale

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// ValidationError represents a problem found in the translation catalogs
type ValidationError struct {
	Type    string // "missing_translation", "duplicate_translation", "unused_key", "duplicate_key", "placeholder_mismatch", "caption_collision"
	Message string
	Details map[string]interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ValidationResult contains all validation errors found
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a formatted string of all errors
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d validation errors:\n", len(r.Errors)))
	for i, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func (r *ValidationResult) add(typ, msg string, details map[string]interface{}) {
	r.Errors = append(r.Errors, ValidationError{Type: typ, Message: msg, Details: details})
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*\.(f\d+)\s*\}\}`)

// ValidateTranslations checks keys.go against every embedded catalog.
// It needs the package sources, so it is meant for tests and development.
func ValidateTranslations() (*ValidationResult, error) {
	_, filename, _, _ := runtime.Caller(0)
	keysPath := filepath.Join(filepath.Dir(filename), "keys.go")

	messageKeys, err := extractMessageKeysFromFile(keysPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract message keys: %w", err)
	}

	translations, err := loadCatalogs()
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{}
	result.checkDuplicateKeys(messageKeys)
	result.checkMissingTranslations(messageKeys, translations)
	result.checkUnusedKeys(messageKeys, translations)
	result.checkDuplicateTranslations(translations)
	result.checkPlaceholders(messageKeys, translations)
	result.checkCaptionCollisions(messageKeys, translations)

	return result, nil
}

func loadCatalogs() (map[string]map[string]string, error) {
	translations := make(map[string]map[string]string, len(Supported))

	for _, lang := range Supported {
		filename := fmt.Sprintf("locales/%s.json", lang)
		data, err := localizedata.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}

		var trans map[string]string
		if err := json.Unmarshal(data, &trans); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}

		translations[lang] = trans
	}

	return translations, nil
}

// checkDuplicateKeys checks for duplicate key values in keys.go
func (r *ValidationResult) checkDuplicateKeys(messageKeys []string) {
	seen := make(map[string]int)
	for _, key := range messageKeys {
		seen[key]++
	}

	for key, count := range seen {
		if count > 1 {
			r.add("duplicate_key",
				fmt.Sprintf("Duplicate key definition in keys.go: %s (appears %d times)", key, count),
				map[string]interface{}{"key": key, "count": count})
		}
	}
}

// checkMissingTranslations checks that every key has a non-empty value in every language
func (r *ValidationResult) checkMissingTranslations(messageKeys []string, translations map[string]map[string]string) {
	for _, key := range messageKeys {
		for _, lang := range Supported {
			if strings.TrimSpace(translations[lang][key]) == "" {
				r.add("missing_translation",
					fmt.Sprintf("Missing %s translation for key: %s", lang, key),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

// checkUnusedKeys checks for catalog keys that keys.go does not define
func (r *ValidationResult) checkUnusedKeys(messageKeys []string, translations map[string]map[string]string) {
	keySet := make(map[string]bool, len(messageKeys))
	for _, key := range messageKeys {
		keySet[key] = true
	}

	for _, lang := range Supported {
		for key := range translations[lang] {
			if !keySet[key] {
				r.add("unused_key",
					fmt.Sprintf("Key %s exists in %s.json but not defined in keys.go", key, lang),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

// checkDuplicateTranslations checks that no two keys share a value within one language
func (r *ValidationResult) checkDuplicateTranslations(translations map[string]map[string]string) {
	for _, lang := range Supported {
		valueToKeys := make(map[string][]string)
		for key, value := range translations[lang] {
			normalized := strings.TrimSpace(value)
			if normalized == "" {
				continue
			}
			valueToKeys[normalized] = append(valueToKeys[normalized], key)
		}

		for value, keys := range valueToKeys {
			if len(keys) > 1 {
				sort.Strings(keys)
				r.add("duplicate_translation",
					fmt.Sprintf("Duplicate %s translation value for keys: %v", lang, keys),
					map[string]interface{}{"language": lang, "keys": keys, "value": value})
			}
		}
	}
}

// checkPlaceholders checks that every language uses the same template fields for a key
func (r *ValidationResult) checkPlaceholders(messageKeys []string, translations map[string]map[string]string) {
	for _, key := range messageKeys {
		want := placeholders(translations[Fallback][key])
		for _, lang := range Supported {
			got := placeholders(translations[lang][key])
			if got != want {
				r.add("placeholder_mismatch",
					fmt.Sprintf("Key %s uses fields [%s] in %s but [%s] in %s", key, got, lang, want, Fallback),
					map[string]interface{}{"key": key, "language": lang})
			}
		}
	}
}

// checkCaptionCollisions checks that one caption never stands for two different
// buttons across languages, so reply keyboard text maps back to a single button
func (r *ValidationResult) checkCaptionCollisions(messageKeys []string, translations map[string]map[string]string) {
	owners := make(map[string]string)
	for _, key := range messageKeys {
		if !strings.HasPrefix(key, "Button") {
			continue
		}
		for _, lang := range Supported {
			caption := translations[lang][key]
			if caption == "" {
				continue
			}
			if owner, ok := owners[caption]; ok && owner != key {
				r.add("caption_collision",
					fmt.Sprintf("Caption %q is used by both %s and %s", caption, owner, key),
					map[string]interface{}{"caption": caption, "keys": []string{owner, key}})
				continue
			}
			owners[caption] = key
		}
	}
}

func placeholders(value string) string {
	matches := placeholderPattern.FindAllStringSubmatch(value, -1)
	fields := make([]string, 0, len(matches))
	for _, m := range matches {
		fields = append(fields, m[1])
	}
	sort.Strings(fields)
	return strings.Join(fields, ",")
}

// extractMessageKeysFromFile extracts all message key constants from keys.go
func extractMessageKeysFromFile(filename string) ([]string, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Values) == 0 {
				continue
			}
			if basicLit, ok := valueSpec.Values[0].(*ast.BasicLit); ok && basicLit.Kind == token.STRING {
				value := basicLit.Value
				if len(value) >= 2 {
					value = value[1 : len(value)-1]
				}
				keys = append(keys, value)
			}
		}
	}

	return keys, nil
}
