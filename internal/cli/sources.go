package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/source"
)

// defaultSource is queried when neither flags nor the config file name any
// source.
const defaultSource = "https://index.specdex.org"

// sourcesConfig is the on-disk shape of ~/.config/specdex/sources.toml:
//
//	sources = [
//	  "https://index.specdex.org",
//	  "https://mirror.internal:8443/specs",
//	]
type sourcesConfig struct {
	Sources []string `toml:"sources"`
}

// loadSources resolves the effective source list: --source flags win, then
// the config file, then the built-in default. Order is preserved because
// source priority follows list order everywhere in the engine.
func (c *CLI) loadSources() ([]*source.Source, error) {
	if len(c.sources) > 0 {
		return source.List(c.sources)
	}

	raw, err := readSourcesConfig()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		raw = []string{defaultSource}
	}
	return source.List(raw)
}

// readSourcesConfig parses the sources config file. A missing file is not
// an error; a present but unparsable one is.
func readSourcesConfig() ([]string, error) {
	dir, err := configDir()
	if err != nil {
		return nil, nil
	}
	path := filepath.Join(dir, "sources.toml")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	var cfg sourcesConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return cfg.Sources, nil
}
