package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/game-catalog/internal/api/handlers"
	"github.com/dom/game-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().WithUsername("collector").BuildAndAuthenticate(t, ts)
	testutil.NewGameBuilder("Quake", "quake").Build(t, ts.DB)
	testutil.NewGameBuilder("Doom", "doom").Build(t, ts.DB)

	do := func(method, path, token string) *http.Response {
		req := testutil.CreateAuthenticatedRequest(t, method, ts.APIURL(path), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
	slugs := func(resp *http.Response) []string {
		var library handlers.LibraryResponse
		testutil.AssertJSONResponse(t, resp, &library)
		out := []string{}
		for _, g := range library.Games {
			out = append(out, g.Slug)
		}
		return out
	}

	t.Run("requires authentication", func(t *testing.T) {
		testutil.AssertStatusCode(t, do("GET", "/library/collector", ""), http.StatusUnauthorized)
		testutil.AssertStatusCode(t, do("POST", "/library/games/quake", ""), http.StatusUnauthorized)
	})

	t.Run("no library before the first game", func(t *testing.T) {
		testutil.AssertStatusCode(t, do("GET", "/library/"+user.Username, token), http.StatusNotFound)
	})

	t.Run("add games", func(t *testing.T) {
		resp := do("POST", "/library/games/quake", token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.Equal(t, []string{"quake"}, slugs(resp))

		resp = do("POST", "/library/games/doom", token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.ElementsMatch(t, []string{"quake", "doom"}, slugs(resp))
	})

	t.Run("adding twice conflicts", func(t *testing.T) {
		testutil.AssertStatusCode(t, do("POST", "/library/games/quake", token), http.StatusConflict)
	})

	t.Run("unknown game", func(t *testing.T) {
		testutil.AssertStatusCode(t, do("POST", "/library/games/half-life", token), http.StatusNotFound)
	})

	t.Run("get by username", func(t *testing.T) {
		resp := do("GET", "/library/collector", token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.ElementsMatch(t, []string{"quake", "doom"}, slugs(resp))
	})

	t.Run("remove", func(t *testing.T) {
		resp := do("DELETE", "/library/games/quake", token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.Equal(t, []string{"doom"}, slugs(resp))

		// Removing again is not an error.
		testutil.AssertStatusCode(t, do("DELETE", "/library/games/quake", token), http.StatusOK)
	})
}
