package core_test

import (
	"errors"
	"testing"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestStepResults_Order(t *testing.T) {
	results := core.NewStepResults()
	results.Set("login", types.JSONResult(map[string]any{"token": "x"}))
	results.Set("users", types.JSONResult([]any{}))
	results.Set("LOGS", types.JSONResult("a,b"))
	results.Set("users", types.ArtifactResult("users.csv"))

	assert.Equal(t, []string{"login", "users", "LOGS"}, results.Names())
	assert.Equal(t, 3, results.Len())

	users, ok := results.Get("users")
	assert.True(t, ok)
	assert.Equal(t, types.ResultArtifact, users.Kind)
	assert.Equal(t, "users.csv", users.ArtifactPath)
	assert.Nil(t, users.Output)
}

func TestStepResults_ValuesSkipsErrors(t *testing.T) {
	results := core.NewStepResults()
	results.Set("ok", types.JSONResult([]any{1}))
	results.Set("file", types.ArtifactResult("file.csv"))
	results.Set("bad", types.ErrorResult(errors.New("boom")))

	assert.Equal(t, map[string]any{"ok": []any{1}, "file": "file.csv"}, results.Values())

	var visited []string
	results.Each(func(name string, res types.StepResult) {
		visited = append(visited, name+":"+res.Kind.String())
	})
	assert.Equal(t, []string{"ok:json", "file:artifact", "bad:error"}, visited)
}
