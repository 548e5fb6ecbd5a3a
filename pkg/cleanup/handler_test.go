package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dhis2-sre/im-atlas/internal/handler"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := handler.RegisterValidation(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestHandler_Cleanup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := fakeEvents{
		"a": {ID: "a", Name: "Hack the Planet", Status: model.EventStatusConcluded, AtlasProvisioning: model.AtlasProvisioning{AutoCleanupOnEventEnd: true}},
	}
	cluster := newCluster("a", "team-1")
	clusterService := &mockClusterService{}
	clusterService.
		On("FindActiveByEvent", mock.Anything, "a").
		Return([]model.Cluster{cluster}, nil)
	clusterService.
		On("Delete", mock.Anything, cluster.ID).
		Return(nil)
	h := NewHandler(NewService(discardLogger(), clusterService, events))

	w := httptest.NewRecorder()
	c := newContext(t, w, http.MethodPost, "/events/a/cleanup", nil)

	h.Cleanup(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, http.StatusOK, w.Code)
	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, Report{EventID: "a", EventName: "Hack the Planet", ClustersFound: 1, ClustersDeleted: 1, Errors: []string{}}, report)
}

func TestHandler_StatusChange(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("NotConcluded", func(t *testing.T) {
		clusterService := &mockClusterService{}
		h := NewHandler(NewService(discardLogger(), clusterService, fakeEvents{}))

		w := httptest.NewRecorder()
		c := newContext(t, w, http.MethodPost, "/events/a/status-changes", StatusChangeRequest{
			PreviousStatus: model.EventStatusUpcoming,
			Status:         model.EventStatusActive,
		})

		h.StatusChange(c)

		require.Empty(t, c.Errors)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"cleanupStarted":false}`, w.Body.String())
	})

	t.Run("Concluded", func(t *testing.T) {
		events := fakeEvents{
			"a": {ID: "a", Status: model.EventStatusConcluded},
		}
		service := NewService(discardLogger(), &mockClusterService{}, events)
		h := NewHandler(service)

		w := httptest.NewRecorder()
		c := newContext(t, w, http.MethodPost, "/events/a/status-changes", StatusChangeRequest{
			PreviousStatus: model.EventStatusActive,
			Status:         model.EventStatusConcluded,
		})

		h.StatusChange(c)
		service.Wait()

		require.Empty(t, c.Errors)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"cleanupStarted":true}`, w.Body.String())
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		h := NewHandler(NewService(discardLogger(), &mockClusterService{}, fakeEvents{}))

		w := httptest.NewRecorder()
		c := newContext(t, w, http.MethodPost, "/events/a/status-changes", StatusChangeRequest{Status: "archived"})

		h.StatusChange(c)

		require.Len(t, c.Errors, 1)
		assert.ErrorContains(t, c.Errors.Last(), "Error binding data")
	})
}

func newContext(t *testing.T, w *httptest.ResponseRecorder, method, path string, body any) *gin.Context {
	t.Helper()

	var b bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&b).Encode(body))
	}
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequestWithContext(context.Background(), method, path, &b)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "eventId", Value: "a"}}
	return c
}
