//go:build integration

package integration_testing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/recommendation"
	"github.com/rufit/rufitserver/internal/userinfo"
	"github.com/rufit/rufitserver/internal/workouts"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) registerAndLogin(ctx context.Context, username string) string {
	t := s.T()

	status, _ := s.doRequest(ctx, http.MethodPost, "/auth/register", "", auth.RegisterRequest{
		Username: username,
		Password: "testpass",
		Email:    username + "@rufit.test",
	})
	require.Equal(t, http.StatusCreated, status)

	status, respBytes := s.doRequest(ctx, http.MethodPost, "/auth/login", "", auth.Credentials{
		Username: username,
		Password: "testpass",
	})
	require.Equal(t, http.StatusOK, status)

	var loginResp auth.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.AccessToken)
	assert.Positive(t, loginResp.UserID)

	return loginResp.AccessToken
}

func (s *IntegrationTestSuite) TestAuthFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	username := gofakeit.Username()
	token := s.registerAndLogin(ctx, username)

	t.Run("register same user again", func(t *testing.T) {
		status, respBytes := s.doRequest(ctx, http.MethodPost, "/auth/register", "", auth.RegisterRequest{
			Username: username,
			Password: "other",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(respBytes), "Username already exists")
	})

	t.Run("bad password", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodPost, "/auth/login", "", auth.Credentials{
			Username: username,
			Password: "bad-password",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("logout invalidates token", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodPost, "/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = s.doRequest(ctx, http.MethodGet, "/userinfo", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func (s *IntegrationTestSuite) TestRecommendationsFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.registerAndLogin(ctx, gofakeit.Username()+"-recs")

	status, respBytes := s.doRequest(ctx, http.MethodGet, "/recommendations", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(respBytes), recommendation.MsgProfileNotFound)

	status, _ = s.doRequest(ctx, http.MethodPost, "/userinfo", token, userinfo.UpsertRequest{
		UserData: &userinfo.Profile{
			Gender:            userinfo.GenderMale,
			Age:               30,
			Weight:            80,
			WeightUnit:        userinfo.WeightUnitKG,
			HeightFt:          180,
			HeightUnit:        userinfo.HeightUnitSI,
			TrainingIntensity: userinfo.IntensityExperienced,
			Goal:              userinfo.GoalMaintain,
			StreakGoal:        3,
		},
	})
	require.Equal(t, http.StatusCreated, status)

	status, respBytes = s.doRequest(ctx, http.MethodGet, "/recommendations", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(respBytes), recommendation.MsgNoHistory)

	for _, weight := range []float64{60, 62.5} {
		status, _ = s.doRequest(ctx, http.MethodPost, "/workout", token, workouts.SessionRequest{
			WorkoutName: "Push day",
			Exercises: []workouts.ExerciseEntry{
				{Name: "bench press", Sets: 3, Reps: 8, Weight: weight},
			},
		})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ = s.doRequest(ctx, http.MethodPost, "/workout", token, workouts.SessionRequest{
		WorkoutName: "Core",
		Exercises: []workouts.ExerciseEntry{
			{Name: "Plank", Sets: 3, Reps: 1, Weight: 0},
		},
	})
	require.Equal(t, http.StatusCreated, status)

	status, respBytes = s.doRequest(ctx, http.MethodGet, "/workout", token, nil)
	require.Equal(t, http.StatusOK, status)
	var history []workouts.Workout
	require.NoError(t, json.Unmarshal(respBytes, &history))
	require.Len(t, history, 3)

	status, respBytes = s.doRequest(ctx, http.MethodGet, "/recommendations", token, nil)
	require.Equal(t, http.StatusOK, status)

	var recs map[string]recommendation.Recommendation
	require.NoError(t, json.Unmarshal(respBytes, &recs))
	require.Len(t, recs, 2)

	// names are stored in catalog spelling
	bench, ok := recs["Bench Press"]
	require.True(t, ok)
	assert.Positive(t, bench.Sets)
	assert.Positive(t, bench.Reps)
	assert.GreaterOrEqual(t, bench.Weight, 62.5)

	plank, ok := recs["Plank"]
	require.True(t, ok)
	assert.NotEmpty(t, plank.Notes)
}
