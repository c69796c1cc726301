package proxy

import (
	"fmt"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// Model actions, the part after ':' in /v1beta/models/{model}:{action}.
const (
	actionGenerateContent       = "generateContent"
	actionStreamGenerateContent = "streamGenerateContent"
	actionCountTokens           = "countTokens"
	actionEmbedContent          = "embedContent"
)

// modelAction is a parsed {model}:{action} path segment.
type modelAction struct {
	Model  string
	Action string
}

// parseModelAction binds the path parameter like generated routers do and splits
// it at the last ':'. A "models/" prefix on the model name is removed.
func parseModelAction(raw string) (modelAction, error) {
	var segment string
	if err := runtime.BindStyledParameterWithOptions("simple", "modelAction", raw, &segment, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return modelAction{}, fmt.Errorf("invalid path parameter: %w", err)
	}

	model, action, found := cutLast(segment, ":")
	if !found || action == "" {
		return modelAction{}, fmt.Errorf("missing action in %q", segment)
	}
	model = strings.TrimPrefix(model, "models/")
	if model == "" {
		return modelAction{}, fmt.Errorf("missing model in %q", segment)
	}

	return modelAction{Model: model, Action: action}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
