package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackjack-advisor/server/agent"
	"blackjack-advisor/server/engine"
	"blackjack-advisor/server/mcts"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	search := mcts.DefaultConfig()
	search.Simulations = 500
	search.Seed = 3
	return Config{
		Port:           "0",
		Decks:          1,
		DealerStay:     17,
		Search:         search,
		LogLevel:       "info",
		MaxDecks:       8,
		MaxSimulations: 5000,
	}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRecommendEndpoint(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	rec := post(t, h, "/api/recommend", `{"player":["T","T"],"dealer":["6","T"],"history":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out agent.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Ps", out.Action)
	assert.Equal(t, "stand", out.Label)
	assert.Equal(t, "6", out.DealerUp)
	assert.Equal(t, 20, out.Player.Score)
	assert.Len(t, out.Candidates, 2)
	assert.Equal(t, 500, out.Simulations)
}

func TestRecommendEndpointOverrides(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	body := `{"player":["5","6"],"dealer":["T"],"search":{"simulations":50,"seed":9}}`
	rec := post(t, h, "/api/recommend", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out agent.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 50, out.Simulations)
	assert.Len(t, out.Candidates, 3)
}

func TestRecommendEndpointErrors(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	testCases := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"player":`, http.StatusBadRequest},
		{"unknown field", `{"player":["5"],"dealer":["5"],"bet":10}`, http.StatusBadRequest},
		{"bad card", `{"player":["X","5"],"dealer":["5"]}`, http.StatusBadRequest},
		{"bad history", `{"player":["5","6"],"dealer":["5"],"history":"Pz"}`, http.StatusBadRequest},
		{"natural", `{"player":["A","K"],"dealer":["5","6"]}`, http.StatusUnprocessableEntity},
		{"dealer turn", `{"player":["9","8"],"dealer":["5","6"],"history":"Ps","turn":"dealer"}`, http.StatusUnprocessableEntity},
		{"hand over", `{"player":["9","8"],"dealer":["T","8"],"history":"PsDs","turn":"end"}`, http.StatusUnprocessableEntity},
		{"negative aggression ignored", `{"player":["5","6"],"dealer":["5"],"search":{"aggression":-1}}`, http.StatusOK},
		{"too many simulations", `{"player":["5","6"],"dealer":["5"],"search":{"simulations":5001}}`, http.StatusBadRequest},
		{"too many decks", `{"player":["5","6"],"dealer":["5"],"decks":9}`, http.StatusBadRequest},
		{"negative decks", `{"player":["5","6"],"dealer":["5"],"decks":-3}`, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, h, "/api/recommend", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestDealEndpoint(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	rec := post(t, h, "/api/deal", `{"decks":2,"seed":42}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out agent.DealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Player.Cards, 2)
	assert.NotEmpty(t, out.DealerUp)
	total := 0
	for _, n := range out.Shoe {
		total += n
	}
	assert.Equal(t, 2*52-4, total)
	if out.Natural == "none" {
		assert.Nil(t, out.Dealer)
		assert.Equal(t, "Player", out.Turn)
	} else {
		assert.NotNil(t, out.Dealer)
		assert.Equal(t, "End", out.Turn)
	}

	// a table that only holds tens always deals two 20s
	rec = post(t, h, "/api/deal", `{"shoe":[0,0,0,0,0,0,0,0,0,8]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 20, out.Player.Score)
	assert.Equal(t, "T", out.DealerUp)

	rec = post(t, h, "/api/deal", `{"shoe":[0,0,0,0,0,0,0,0,0,3]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(t, h, "/api/deal", `{"shoe":[-1,0,0,0,0,0,0,0,0,3]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDealEndpointRejectsBadRules(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	for _, body := range []string{
		`{"decks":-3}`,
		`{"decks":9}`,
		`{"dealer_stay":99}`,
		`{"dealer_stay":-1}`,
		`{"shoe":[0,0,0,0,0,0,0,0,0,500]}`,
	} {
		rec := post(t, h, "/api/deal", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDealTableFeedsRecommend(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	rec := post(t, h, "/api/deal", `{"shoe":[4,4,4,4,4,4,4,4,4,0],"dealer_stay":16,"seed":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dealt agent.DealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dealt))
	assert.Equal(t, 16, dealt.Table.DealerStay)
	require.Equal(t, "none", dealt.Natural)

	body, err := json.Marshal(dealt.Table)
	require.NoError(t, err)
	rec = post(t, h, "/api/recommend", string(body))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScoreEndpoint(t *testing.T) {
	h := Router(testConfig(), zerolog.New(io.Discard))
	rec := post(t, h, "/api/score", `{"cards":["A","A","8"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out agent.ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 20, out.Score)
	assert.False(t, out.Busted)

	rec = post(t, h, "/api/score", `{"cards":["Q"]}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 10, out.Score)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(mcts.ErrNoData))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(engine.ErrEmptyShoe))
	assert.Equal(t, http.StatusBadRequest, statusFor(engine.ErrExhaustedRank))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig().validate())

	c := testConfig()
	c.Decks = 0
	assert.Error(t, c.validate())

	c = testConfig()
	c.DealerStay = 22
	assert.Error(t, c.validate())

	c = testConfig()
	c.Search.Simulations = 0
	assert.Error(t, c.validate())

	c = testConfig()
	c.MaxDecks = 0
	assert.Error(t, c.validate())

	c = testConfig()
	c.MaxSimulations = 100
	assert.Error(t, c.validate())

	c = testConfig()
	c.LogLevel = "loud"
	assert.Error(t, c.validate())
}

func TestEnvHelpers(t *testing.T) {
	assert.Equal(t, 7, atoiDef("7", 1))
	assert.Equal(t, 1, atoiDef("x", 1))
	assert.Equal(t, 0.5, floatDef(" 0.5", 1))
	assert.Equal(t, int64(-3), int64Def("-3", 0))
	assert.True(t, asBool("Yes"))
	assert.False(t, asBool("0"))

	t.Setenv("BJ_TEST_KEY", "v")
	assert.Equal(t, "v", getenv("BJ_TEST_KEY", "d"))
	assert.Equal(t, "d", getenv("BJ_TEST_MISSING", "d"))
}

func TestRunOnceFromHands(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Simulations = 200
	cfg.PlayerHand = "T,6"
	cfg.DealerHand = "T 7"
	require.NoError(t, runOnce(cfg, zerolog.Nop()))

	cfg.PlayerHand = "T,X"
	err := runOnce(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "PLAYER_HAND")

	cfg.PlayerHand = "T,6"
	cfg.History = "Pz"
	assert.ErrorIs(t, runOnce(cfg, zerolog.Nop()), engine.ErrInvalidAction)
}
