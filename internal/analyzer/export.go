package analyzer

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Export encodes a result as indented JSON.
func Export(result *model.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, eris.New("analyzer: nil result")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: encode result")
	}
	return data, nil
}

// Import decodes a result produced by Export.
func Import(data []byte) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, eris.Wrap(err, "analyzer: decode result")
	}
	return &result, nil
}
