package prompts

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

const promptsOverrideEnv = "PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type Name string

const (
	Subtopics       Name = "subtopics"
	Documentation   Name = "documentation"
	Websites        Name = "websites"
	QuizGenerate    Name = "quiz_generate"
	QuizEvaluate    Name = "quiz_evaluate"
	Tutor           Name = "tutor"
	Recommendations Name = "recommendations"
	Insights        Name = "insights"
)

var required = []Name{Subtopics, Documentation, Websites, QuizGenerate, QuizEvaluate, Tutor, Recommendations, Insights}

type promptFile struct {
	Version int               `yaml:"version"`
	Prompts map[string]string `yaml:"prompts"`
}

var (
	loadOnce  sync.Once
	templates map[Name]*template.Template
	loadErr   error
)

// Render executes the named prompt template with data.
func Render(name Name, data any) (string, error) {
	loadOnce.Do(func() {
		templates, loadErr = load()
	})
	if loadErr != nil {
		return "", loadErr
	}
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// MustRender is Render for templates whose data shape is fixed at compile time.
func MustRender(name Name, data any) string {
	out, err := Render(name, data)
	if err != nil {
		panic(err)
	}
	return out
}

func load() (map[Name]*template.Template, error) {
	data, err := readSpec()
	if err != nil {
		return nil, err
	}
	var doc promptFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse prompts yaml: %w", err)
	}
	out := make(map[Name]*template.Template, len(doc.Prompts))
	for key, text := range doc.Prompts {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", key, err)
		}
		out[Name(key)] = tmpl
	}
	var missing []string
	for _, name := range required {
		if _, ok := out[name]; !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("prompts yaml missing: " + strings.Join(missing, ", "))
	}
	return out, nil
}

func readSpec() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(promptsOverrideEnv)); path != "" {
		return os.ReadFile(path)
	}
	return promptsFS.ReadFile("prompts.yaml")
}
