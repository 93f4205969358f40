package tiles

import (
	"encoding/json"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Built-in shared-model types.
const (
	SharedDataSetType   = "SharedDataSet"
	SharedVariablesType = "SharedVariables"
)

// DataSet is the payload of a SharedDataSet model.
type DataSet struct {
	Attributes []string            `json:"attributes"`
	Cases      []map[string]string `json:"cases"`
}

// NewDataSetModel returns a fresh, empty dataset model.
func NewDataSetModel(name string) *types.SharedModel {
	data, _ := json.Marshal(DataSet{Attributes: []string{}, Cases: []map[string]string{}})
	return &types.SharedModel{
		ID:   types.NewID(),
		Type: SharedDataSetType,
		Name: name,
		Data: data,
	}
}

// NewVariablesModel returns a fresh, empty variables model.
func NewVariablesModel() *types.SharedModel {
	return &types.SharedModel{
		ID:   types.NewID(),
		Type: SharedVariablesType,
		Data: json.RawMessage(`{"variables":[]}`),
	}
}

// Datasets are copied along with their tiles; variables stay shared.
func dataSetInfo() types.SharedModelInfo {
	return types.SharedModelInfo{Type: SharedDataSetType, HasName: true, Duplicate: true}
}

func variablesInfo() types.SharedModelInfo {
	return types.SharedModelInfo{Type: SharedVariablesType}
}

// unlinkAll detaches tileID from every shared model it uses.
func unlinkAll(env types.TileEnv) {
	if env.Models == nil {
		return
	}
	for _, m := range env.Models.TileSharedModels(env.TileID) {
		env.Models.RemoveTileSharedModel(env.TileID, m)
	}
}
