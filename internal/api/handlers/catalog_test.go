package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dom/game-catalog/internal/api/handlers"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogClient struct {
	t     *testing.T
	ts    *testutil.TestServer
	staff string
	user  string
}

func newCatalogClient(t *testing.T) *catalogClient {
	t.Helper()
	ts := testutil.NewTestServer(t)
	_, staff := testutil.NewUserBuilder().Staff().BuildAndAuthenticate(t, ts)
	_, user := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	return &catalogClient{t: t, ts: ts, staff: staff, user: user}
}

func (c *catalogClient) do(method, path string, body interface{}, token string) *http.Response {
	c.t.Helper()
	req := testutil.CreateAuthenticatedRequest(c.t, method, c.ts.APIURL(path), body, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *catalogClient) putRaw(path, contentType string, body []byte) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest("PUT", c.ts.APIURL(path), bytes.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.staff)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCatalogHandler_Genres(t *testing.T) {
	c := newCatalogClient(t)

	tests := []struct {
		name           string
		request        handlers.GenreRequest
		token          string
		expectedStatus int
		expectedSlug   string
	}{
		{
			name:           "derived slug",
			request:        handlers.GenreRequest{Name: "Role-Playing Game"},
			token:          c.staff,
			expectedStatus: http.StatusCreated,
			expectedSlug:   "role-playing-game",
		},
		{
			name:           "explicit slug",
			request:        handlers.GenreRequest{Name: "Shoot 'em up", Slug: "shmup"},
			token:          c.staff,
			expectedStatus: http.StatusCreated,
			expectedSlug:   "shmup",
		},
		{
			name:           "missing name",
			request:        handlers.GenreRequest{Slug: "nameless"},
			token:          c.staff,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not staff",
			request:        handlers.GenreRequest{Name: "Puzzle"},
			token:          c.user,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "anonymous",
			request:        handlers.GenreRequest{Name: "Puzzle"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.do("POST", "/genres", tt.request, tt.token)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var genre handlers.NamedEntry
			testutil.AssertJSONResponse(t, resp, &genre)
			assert.Equal(t, tt.expectedSlug, genre.Slug)
		})
	}

	resp := c.do("GET", "/genres", nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var genres []handlers.NamedEntry
	testutil.AssertJSONResponse(t, resp, &genres)
	slugs := []string{}
	for _, g := range genres {
		slugs = append(slugs, g.Slug)
	}
	assert.ElementsMatch(t, []string{"role-playing-game", "shmup"}, slugs)
}

func TestCatalogHandler_Companies(t *testing.T) {
	c := newCatalogClient(t)

	resp := c.do("POST", "/companies", handlers.CompanyRequest{Name: "  id Software ", Website: "idsoftware.com"}, c.staff)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var company domain.Company
	testutil.AssertJSONResponse(t, resp, &company)
	assert.Equal(t, "id Software", company.Name)
	assert.Equal(t, "id-software", company.Slug)

	resp = c.do("POST", "/companies", handlers.CompanyRequest{Name: "id Software"}, c.staff)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	testutil.AssertJSONResponse(t, resp, &company)
	assert.Equal(t, "id-software-1", company.Slug)

	resp = c.do("PUT", "/companies/id-software", handlers.CompanyRequest{Name: "id Software LLC"}, c.staff)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &company)
	assert.Equal(t, "id-software-llc", company.Slug)
	assert.Equal(t, "idsoftware.com", company.Website, "fields left out of the update are kept")

	testutil.AssertStatusCode(t, c.do("GET", "/companies/id-software", nil, ""), http.StatusNotFound)

	resp = c.do("GET", "/companies/id-software-llc", nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	testutil.AssertStatusCode(t, c.do("PUT", "/companies/nope", handlers.CompanyRequest{Name: "Nope"}, c.staff), http.StatusNotFound)
}

func TestCatalogHandler_DefaultInstaller(t *testing.T) {
	c := newCatalogClient(t)
	testutil.NewPlatformBuilder("Flash", "flash").Build(t, c.ts.DB)

	resp := c.do("GET", "/platforms/flash", nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var platform handlers.PlatformResponse
	testutil.AssertJSONResponse(t, resp, &platform)
	assert.Equal(t, "null", string(platform.DefaultInstaller))

	t.Run("yaml template", func(t *testing.T) {
		resp := c.putRaw("/platforms/flash/default-installer", "application/yaml",
			[]byte("runner: flash\nscript:\n  game:\n    main_file: N/A\n"))
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var platform handlers.PlatformResponse
		testutil.AssertJSONResponse(t, resp, &platform)
		var template map[string]interface{}
		require.NoError(t, json.Unmarshal(platform.DefaultInstaller, &template))
		assert.Equal(t, "flash", template["runner"])
		assert.Equal(t, map[string]interface{}{
			"game": map[string]interface{}{"main_file": "N/A"},
		}, template["script"])
	})

	t.Run("json template", func(t *testing.T) {
		resp := c.putRaw("/platforms/flash/default-installer", "application/json", []byte(flashTemplate))
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("not a mapping", func(t *testing.T) {
		resp := c.putRaw("/platforms/flash/default-installer", "application/yaml", []byte("- flash\n"))
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("unknown platform", func(t *testing.T) {
		resp := c.putRaw("/platforms/amiga/default-installer", "application/json", []byte(flashTemplate))
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("empty body clears", func(t *testing.T) {
		resp := c.putRaw("/platforms/flash/default-installer", "application/json", nil)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var platform handlers.PlatformResponse
		testutil.AssertJSONResponse(t, resp, &platform)
		assert.Equal(t, "null", string(platform.DefaultInstaller))
	})
}

func TestCatalogHandler_DefaultInstallerFeedsResolver(t *testing.T) {
	c := newCatalogClient(t)
	flash := testutil.NewPlatformBuilder("Flash", "flash").Build(t, c.ts.DB)
	testutil.NewGameBuilder("Fancy Pants", "fancy-pants").WithPlatforms(flash).Build(t, c.ts.DB)

	testutil.AssertStatusCode(t, c.do("GET", "/installers/fancy-pants", nil, ""), http.StatusNotFound)

	resp := c.putRaw("/platforms/flash/default-installer", "application/json", []byte(flashTemplate))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = c.do("GET", "/installers/fancy-pants", nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var docs []map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "fancy-pants-flash", docs[0]["slug"])
	assert.Equal(t, "flash", docs[0]["runner"])
}

func TestCatalogHandler_Runners(t *testing.T) {
	c := newCatalogClient(t)

	resp := c.do("POST", "/runners", handlers.RunnerRequest{Name: "DOSBox", Website: "dosbox.com"}, c.staff)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var runner domain.Runner
	testutil.AssertJSONResponse(t, resp, &runner)
	assert.Equal(t, "dosbox", runner.Slug)

	testutil.AssertStatusCode(t, c.do("POST", "/runners", handlers.RunnerRequest{}, c.staff), http.StatusBadRequest)
	testutil.AssertErrorResponse(t, c.do("DELETE", "/runners/dosbox", nil, c.user), http.StatusForbidden, "Staff only")
	testutil.AssertStatusCode(t, c.do("DELETE", "/runners/dosbox", nil, c.staff), http.StatusNoContent)
	testutil.AssertErrorResponse(t, c.do("DELETE", "/runners/dosbox", nil, c.staff), http.StatusNotFound, "runner not found")
}

func TestFeaturedHandler(t *testing.T) {
	c := newCatalogClient(t)
	game := testutil.NewGameBuilder("Quake", "quake").WithYear(1996).Build(t, c.ts.DB)

	tests := []struct {
		name           string
		request        handlers.CreateFeaturedRequest
		token          string
		expectedStatus int
	}{
		{
			name:           "game",
			request:        handlers.CreateFeaturedRequest{Kind: "game", ObjectID: game.ID, Image: "quake.png"},
			token:          c.staff,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown kind",
			request:        handlers.CreateFeaturedRequest{Kind: "user", ObjectID: 1},
			token:          c.staff,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing target",
			request:        handlers.CreateFeaturedRequest{Kind: "genre", ObjectID: 999},
			token:          c.staff,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not staff",
			request:        handlers.CreateFeaturedRequest{Kind: "game", ObjectID: game.ID},
			token:          c.user,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.do("POST", "/featured", tt.request, tt.token)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}

	resp := c.do("GET", "/featured", nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var items []struct {
		Kind   string                    `json:"kind"`
		Image  string                    `json:"image"`
		Target handlers.GameSummaryEntry `json:"target"`
	}
	testutil.AssertJSONResponse(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "game", items[0].Kind)
	assert.Equal(t, "quake.png", items[0].Image)
	assert.Equal(t, "quake", items[0].Target.Slug)

	testutil.AssertStatusCode(t, c.do("GET", "/featured?limit=0", nil, ""), http.StatusBadRequest)
}
