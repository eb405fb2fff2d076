package extractor

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed gazetteer.toml
var defaultGazetteerTOML []byte

// DefaultGazetteer returns the built-in bilingual gazetteer
func DefaultGazetteer() (*Gazetteer, error) {
	return parseGazetteer(defaultGazetteerTOML)
}

// LoadGazetteer reads a gazetteer from a TOML file, replacing the built-in set
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read gazetteer file", goerr.V("path", path))
	}
	return parseGazetteer(data)
}

func parseGazetteer(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := toml.Unmarshal(data, &g); err != nil {
		return nil, goerr.Wrap(err, "failed to parse gazetteer")
	}
	return &g, nil
}
