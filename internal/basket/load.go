package basket

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type basketFile struct {
	Items    []Item `yaml:"items"`
	Headline []Item `yaml:"headline"`
}

// LoadFile reads a catalog override from a YAML file. A malformed file is a
// fatal configuration error; the caller should not fall back to the default.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "basket: read %s", path)
	}

	var f basketFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "basket: parse %s", path)
	}
	if len(f.Items) == 0 {
		return nil, eris.Errorf("basket: %s defines no items", path)
	}

	c, err := New(f.Items, f.Headline)
	if err != nil {
		return nil, eris.Wrapf(err, "basket: validate %s", path)
	}
	return c, nil
}
