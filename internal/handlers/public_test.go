package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateFinder struct {
	states map[string]*model.State
}

func (f *fakeStateFinder) GetBySlug(_ context.Context, slug string) (*model.State, error) {
	return f.states[slug], nil
}

type fakeStateIssueLister struct {
	issues map[string][]model.Issue
}

func (f *fakeStateIssueLister) GetByStateSlug(_ context.Context, stateSlug string) ([]model.Issue, error) {
	return f.issues[stateSlug], nil
}

func issuesByStateApp() *fiber.App {
	states := &fakeStateFinder{states: map[string]*model.State{
		"texas": {ID: 2, Name: "Texas", Slug: "texas", StateCode: "TX"},
	}}
	issues := &fakeStateIssueLister{issues: map[string][]model.Issue{
		"texas": {
			{ID: 10, Name: "Personal Injury", Slug: "personal-injury"},
		},
	}}

	app := fiber.New()
	app.Get("/api/issues/:state", IssuesByStateHandler(states, issues))
	return app
}

func TestIssuesByStateHandler(t *testing.T) {
	app := issuesByStateApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/issues/texas", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		State  string `json:"state"`
		Issues []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"issues"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "Texas", body.State)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "personal-injury", body.Issues[0].Slug)
}

// A slug not matching any state is a 404, not an empty issue list
func TestIssuesByStateHandler_UnknownState(t *testing.T) {
	app := issuesByStateApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/issues/atlantis", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
