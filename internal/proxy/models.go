package proxy

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// supportedGenerationMethods lists the actions served for every model.
var supportedGenerationMethods = []string{
	actionGenerateContent,
	actionStreamGenerateContent,
	actionCountTokens,
	actionEmbedContent,
}

// Model is one entry of the model list.
type Model struct {
	Name                       string   `json:"name"`
	BaseModelID                string   `json:"baseModelId"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// NewModel describes the backend model id in the legacy listing format.
func NewModel(id string) Model {
	id = strings.TrimPrefix(id, "models/")
	return Model{
		Name:                       "models/" + id,
		BaseModelID:                id,
		DisplayName:                id,
		SupportedGenerationMethods: supportedGenerationMethods,
	}
}

type listModelsResponse struct {
	Models []Model `json:"models"`
}

// listModels returns the configured models. The backend model list is not
// queried: not every credential type may call it.
func (p *Proxy) listModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, listModelsResponse{Models: lo.Ternary(p.models == nil, []Model{}, p.models)}, http.StatusOK)
}

func (p *Proxy) getModel(w http.ResponseWriter, r *http.Request) {
	name := "models/" + strings.TrimPrefix(r.PathValue("model"), "models/")

	model, ok := lo.Find(p.models, func(m Model) bool {
		return m.Name == name
	})
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "model "+name+" not found")
		return
	}

	writeJSON(r.Context(), w, model, http.StatusOK)
}
