package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/dropreport/pkg/types"
)

// looksTabular reports whether a response value should be saved as CSV. Any
// text containing a comma qualifies; this is a heuristic, not a content check.
func looksTabular(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, ",") {
		return "", false
	}
	return s, true
}

// MaterializeArtifacts writes every comma-bearing text result to
// <dir>/<stepName>.csv and replaces the result with the file's path.
func MaterializeArtifacts(results *StepResults, dir string, logger Logger) error {
	for _, name := range results.Names() {
		res, _ := results.Get(name)
		if res.Kind != types.ResultJSON {
			continue
		}
		text, ok := looksTabular(res.Output)
		if !ok {
			continue
		}

		path := filepath.Join(dir, name+".csv")
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return &ArtifactPersistError{Step: name, Path: path, Err: err}
		}
		results.Set(name, types.ArtifactResult(path))
		logger.Info().
			Str("step_name", name).
			Str("path", path).
			Int("bytes", len(text)).
			Msg("Saved delimited response as artifact")
	}
	return nil
}
