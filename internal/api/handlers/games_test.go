package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/dom/game-catalog/internal/api/handlers"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flashTemplate = `{"runner": "flash", "script": {"game": {"main_file": "N/A"}}}`

func TestGameHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)
	flash := testutil.NewPlatformBuilder("Flash", "flash").WithDefaultInstaller(flashTemplate).Build(t, ts.DB)
	linux := testutil.NewPlatformBuilder("Linux", "linux").Build(t, ts.DB)
	testutil.NewGameBuilder("Alien Hominid", "alien-hominid").WithYear(2002).WithPlatforms(flash).Build(t, ts.DB)
	testutil.NewGameBuilder("Doom", "doom").WithPlatforms(linux).Build(t, ts.DB)
	testutil.NewGameBuilder("Quake", "quake").WithPlatforms(linux).Build(t, ts.DB)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		wantSlugs      []string
	}{
		{
			name:           "all games",
			expectedStatus: http.StatusOK,
			wantSlugs:      []string{"alien-hominid", "doom", "quake"},
		},
		{
			name:           "repeated games parameter",
			query:          "games=quake&games=doom",
			expectedStatus: http.StatusOK,
			wantSlugs:      []string{"doom", "quake"},
		},
		{
			name:           "search",
			query:          "search=oo",
			expectedStatus: http.StatusOK,
			wantSlugs:      []string{"doom"},
		},
		{
			name:           "with installers",
			query:          "with_installers=1",
			expectedStatus: http.StatusOK,
			wantSlugs:      []string{"alien-hominid"},
		},
		{
			name:           "invalid page",
			query:          "page=zero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid page size",
			query:          "page_size=-3",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.APIURL("/games?" + tt.query))
			require.NoError(t, err)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var result handlers.GameListResponse
			testutil.AssertJSONResponse(t, resp, &result)
			slugs := []string{}
			for _, g := range result.Results {
				slugs = append(slugs, g.Slug)
			}
			assert.Equal(t, tt.wantSlugs, slugs)
			assert.Equal(t, int64(len(tt.wantSlugs)), result.Count)
		})
	}
}

func TestGameHandler_List_Post(t *testing.T) {
	ts := testutil.NewTestServer(t)
	for i := 0; i < 3; i++ {
		testutil.NewGameBuilder(fmt.Sprintf("Game %d", i), fmt.Sprintf("game-%d", i)).Build(t, ts.DB)
	}

	body, _ := json.Marshal(map[string][]string{"games": {"game-0", "game-2"}})
	resp, err := http.Post(ts.APIURL("/games"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var result handlers.GameListResponse
	testutil.AssertJSONResponse(t, resp, &result)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "game-0", result.Results[0].Slug)
	assert.Equal(t, "game-2", result.Results[1].Slug)

	resp, err = http.Post(ts.APIURL("/games"), "application/json", bytes.NewBufferString("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestGameHandler_List_PageLinks(t *testing.T) {
	ts := testutil.NewTestServer(t)
	for i := 0; i < 5; i++ {
		testutil.NewGameBuilder(fmt.Sprintf("Game %d", i), fmt.Sprintf("game-%d", i)).Build(t, ts.DB)
	}

	resp, err := http.Get(ts.APIURL("/games?page_size=2&page=2&search=game"))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result handlers.GameListResponse
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, int64(5), result.Count)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "game-2", result.Results[0].Slug)

	require.NotNil(t, result.Next)
	next, err := url.Parse(*result.Next)
	require.NoError(t, err)
	assert.Equal(t, "3", next.Query().Get("page"))
	assert.Equal(t, "game", next.Query().Get("search"), "filters survive paging")

	require.NotNil(t, result.Previous)
	previous, err := url.Parse(*result.Previous)
	require.NoError(t, err)
	assert.Equal(t, "1", previous.Query().Get("page"))

	// Following the link works.
	resp, err = http.Get(*result.Next)
	require.NoError(t, err)
	defer resp.Body.Close()
	var last handlers.GameListResponse
	testutil.AssertJSONResponse(t, resp, &last)
	require.Len(t, last.Results, 1)
	assert.Nil(t, last.Next)
}

func TestGameHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	flash := testutil.NewPlatformBuilder("Flash", "flash").WithDefaultInstaller(flashTemplate).Build(t, ts.DB)
	linux := testutil.NewPlatformBuilder("Linux", "linux").Build(t, ts.DB)
	testutil.NewGameBuilder("Alien Hominid", "alien-hominid").WithPlatforms(flash, linux).Build(t, ts.DB)
	testutil.NewGameBuilder("Doom", "doom").WithSteamID(2280).WithPlatforms(linux).Build(t, ts.DB)

	tests := []struct {
		name             string
		slug             string
		expectedStatus   int
		wantHasInstaller bool
		wantPlatforms    []handlers.NamedEntry
	}{
		{
			name:             "game with a default installer",
			slug:             "alien-hominid",
			expectedStatus:   http.StatusOK,
			wantHasInstaller: true,
			wantPlatforms:    []handlers.NamedEntry{{Name: "Flash", Slug: "flash"}, {Name: "Linux", Slug: "linux"}},
		},
		{
			name:           "game without installers",
			slug:           "doom",
			expectedStatus: http.StatusOK,
			wantPlatforms:  []handlers.NamedEntry{{Name: "Linux", Slug: "linux"}},
		},
		{
			name:           "unknown game",
			slug:           "hexen",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.APIURL("/games/" + tt.slug))
			require.NoError(t, err)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var result handlers.GameDetailResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, tt.slug, result.Slug)
			assert.Equal(t, tt.wantHasInstaller, result.HasInstaller)
			assert.Equal(t, tt.wantPlatforms, result.Platforms)
		})
	}
}

func TestGameHandler_SubmitAndPublish(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewPlatformBuilder("Linux", "linux").Build(t, ts.DB)
	submitter, userToken := testutil.NewUserBuilder().
		WithUsername("submitter").
		WithEmail("submitter@example.com").
		BuildAndAuthenticate(t, ts)
	_, staffToken := testutil.NewUserBuilder().Staff().BuildAndAuthenticate(t, ts)
	client := &http.Client{}

	// Anonymous submissions are refused.
	req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/games/submissions"), map[string]interface{}{"name": "Sonic"}, "")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

	req = testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/games/submissions"), map[string]interface{}{
		"name":      "Sonic",
		"year":      1991,
		"platforms": []string{"linux"},
	}, userToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var submission handlers.SubmissionResponse
	testutil.AssertJSONResponse(t, resp, &submission)
	resp.Body.Close()
	assert.Equal(t, "sonic", submission.Game.Slug)
	assert.False(t, submission.Game.IsPublic)

	req = testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/games/submissions"), map[string]interface{}{
		"name":      "Sonic 2",
		"platforms": []string{"megadrive"},
	}, userToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	// Only staff can publish.
	req = testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/games/sonic/publish"), nil, userToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	req = testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/games/sonic/publish"), nil, staffToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var published handlers.GameDetailResponse
	testutil.AssertJSONResponse(t, resp, &published)
	resp.Body.Close()
	assert.True(t, published.IsPublic)

	sent := ts.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, submitter.Email, sent[0].Recipient)
}

func TestGameHandler_Screenshots(t *testing.T) {
	ts := testutil.NewTestServer(t)
	uploader, _ := testutil.NewUserBuilder().Build(t, ts.DB)
	game := testutil.NewGameBuilder("Quake", "quake").Build(t, ts.DB)
	require.NoError(t, ts.DB.Create(&domain.Screenshot{GameID: game.ID, Image: "quake.png", UploadedByID: uploader.ID, Published: true}).Error)

	resp, err := http.Get(ts.APIURL("/games/quake/screenshots"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var result []handlers.ScreenshotResponse
	testutil.AssertJSONResponse(t, resp, &result)
	require.Len(t, result, 1)
	assert.Equal(t, "quake.png", result[0].Image)
	assert.Equal(t, "Quake", result[0].Description)
}
