package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"corpcheck/internal/evaluation"
	"corpcheck/internal/lifecycle"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/store"
	httptransport "corpcheck/internal/transport/http"
)

type recordingQueue struct {
	tasks []models.Task
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, task models.Task) error {
	q.tasks = append(q.tasks, task)
	return q.err
}

type HandlerSuite struct {
	suite.Suite

	queue  *recordingQueue
	server *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.queue = &recordingQueue{}
	svc, err := lifecycle.New(
		store.NewMemoryPackageStore(),
		store.NewMemoryEvaluationStore(),
		s.queue,
		evaluation.NewScorer(),
	)
	s.Require().NoError(err)

	logger := slog.New(slog.DiscardHandler)
	s.server = httptest.NewServer(httptransport.NewRouter(httptransport.New(svc, logger)))
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func (s *HandlerSuite) postJSON(path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(payload))
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) getJSON(path string, out any) *http.Response {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

func (s *HandlerSuite) decode(resp *http.Response, out any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

// validate runs POST /validation and returns the decoded response.
func (s *HandlerSuite) validate(body map[string]any) httptransport.ValidationResponse {
	resp := s.postJSON("/validation", body)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var out httptransport.ValidationResponse
	s.decode(resp, &out)
	return out
}

// complete reports a successful single-node build for the given record.
func (s *HandlerSuite) complete(cid uuid.UUID, name string) {
	body := map[string]any{
		"cid": cid,
		"data": map[string]any{
			"tree": map[string]any{
				"name":    name,
				"version": "1.0.0",
				"license": map[string]any{"type": "MIT"},
			},
			"meta": map[string]any{
				name: map[string]any{
					"npmScores": map[string]any{
						"quality":     1,
						"popularity":  1,
						"maintenance": 1,
					},
				},
			},
		},
	}
	resp := s.postJSON("/complete", body)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// ============================================================
// POST /validation
// ============================================================

func (s *HandlerSuite) TestValidate() {
	s.Run("accepts a registry coordinate and enqueues a build", func() {
		out := s.validate(map[string]any{"packageName": "left-pad", "version": "1.3.0"})

		s.Equal(models.StatePending, out.State.Type)
		s.NotEqual(uuid.Nil, out.CID)
		s.NotEqual(uuid.Nil, out.EvaluationID)
		s.Nil(out.Result)
		s.Require().Len(s.queue.tasks, 1)
		s.Equal(out.CID, s.queue.tasks[0].CID)
	})

	s.Run("repeated request returns the same record", func() {
		first := s.validate(map[string]any{"packageName": "lodash", "version": "4.17.21"})
		second := s.validate(map[string]any{"packageName": "lodash", "version": "4.17.21"})

		s.Equal(first.CID, second.CID)
		s.Equal(first.EvaluationID, second.EvaluationID)
	})

	s.Run("returns the scored result once completed", func() {
		created := s.validate(map[string]any{"packageName": "chalk", "version": "5.0.0"})
		s.complete(created.CID, "chalk")

		out := s.validate(map[string]any{"packageName": "chalk", "version": "5.0.0"})
		s.Equal(models.StateSucceeded, out.State.Type)
		s.Require().NotNil(out.Result)
		s.Equal("RECOMMENDED", string(out.Result.Qualification))
	})

	s.Run("missing identity is a bad request", func() {
		resp := s.postJSON("/validation", map[string]any{"force": true})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("unknown fields are rejected", func() {
		resp := s.postJSON("/validation", map[string]any{"packageName": "x", "bogus": 1})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("queue failure maps to service unavailable", func() {
		s.queue.err = fmt.Errorf("broker down")
		defer func() { s.queue.err = nil }()

		resp := s.postJSON("/validation", map[string]any{"packageName": "glob", "version": "7.0.0"})
		defer resp.Body.Close()
		s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]map[string]string
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
		s.Equal("backend unavailable", body["error"]["message"])
	})
}

// ============================================================
// GET /validation/{cid}
// ============================================================

func (s *HandlerSuite) TestGetValidation() {
	s.Run("returns the record with its evaluations", func() {
		created := s.validate(map[string]any{"packageName": "left-pad", "version": "1.3.0"})
		s.complete(created.CID, "left-pad")

		var out httptransport.PackageResponse
		resp := s.getJSON("/validation/"+created.CID.String(), &out)
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal(created.CID, out.CID)
		s.Equal(models.StateSucceeded, out.State.Type)
		s.Require().Len(out.Evaluations, 1)
		s.NotNil(out.Evaluations[0].Result)
	})

	s.Run("unknown cid is not found", func() {
		resp := s.getJSON("/validation/"+uuid.NewString(), nil)
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})

	s.Run("malformed cid is a bad request", func() {
		resp := s.getJSON("/validation/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

// ============================================================
// POST /complete
// ============================================================

func (s *HandlerSuite) TestComplete() {
	s.Run("worker error fails the record", func() {
		created := s.validate(map[string]any{"packageName": "node-sass", "version": "4.0.0"})

		resp := s.postJSON("/complete", map[string]any{"cid": created.CID, "error": "build failed"})
		resp.Body.Close()
		s.Equal(http.StatusOK, resp.StatusCode)

		var out httptransport.PackageResponse
		s.getJSON("/validation/"+created.CID.String(), &out)
		s.Equal(models.StateFailed, out.State.Type)
		s.Equal("build failed", out.State.Message)
	})

	s.Run("missing cid is a bad request", func() {
		resp := s.postJSON("/complete", map[string]any{"error": "x"})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("unknown cid is not found", func() {
		resp := s.postJSON("/complete", map[string]any{"cid": uuid.New(), "error": "x"})
		defer resp.Body.Close()
		s.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

// ============================================================
// GET /badge/{name}/{version}
// ============================================================

func (s *HandlerSuite) TestBadge() {
	badgeFor := func(name, version string) string {
		var out httptransport.BadgeResponse
		resp := s.getJSON(fmt.Sprintf("/badge/%s/%s", name, version), &out)
		s.Equal(http.StatusOK, resp.StatusCode)
		return string(out.Badge)
	}

	s.Run("unvalidated package shows failed", func() {
		s.Equal("failed", badgeFor("unknown-pkg", "1.0.0"))
	})

	s.Run("pending package shows in progress", func() {
		s.validate(map[string]any{"packageName": "left-pad", "version": "1.3.0"})
		s.Equal("in-progress", badgeFor("left-pad", "1.3.0"))
	})

	s.Run("completed package shows its qualification", func() {
		created := s.validate(map[string]any{"packageName": "chalk", "version": "5.0.0"})
		s.complete(created.CID, "chalk")
		s.Equal("recommended", badgeFor("chalk", "5.0.0"))
	})

	s.Run("lookup never enqueues work", func() {
		before := len(s.queue.tasks)
		badgeFor("never-seen", "0.0.1")
		s.Len(s.queue.tasks, before)
	})
}
