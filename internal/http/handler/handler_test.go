package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dataroom/internal/http/middleware"
	"dataroom/internal/model"
	"dataroom/internal/service"
	serviceMocks "dataroom/internal/service/mocks"
)

var alice = model.Identity{UserID: "u-alice", Email: "alice@example.com", Name: "Alice"}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (model.Identity, error) {
	if token == "alice-token" {
		return alice, nil
	}
	return model.Identity{}, errors.New("bad token")
}

type testServer struct {
	app     *fiber.App
	content *serviceMocks.MockContentGateway
	links   *serviceMocks.MockShareLinkService
	reqs    *serviceMocks.MockAccessRequestWorkflow
	audit   *serviceMocks.MockAuditTrail
}

const edgeCountryHeader = "CF-IPCountry"

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, _, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &testServer{
		content: new(serviceMocks.MockContentGateway),
		links:   new(serviceMocks.MockShareLinkService),
		reqs:    new(serviceMocks.MockAccessRequestWorkflow),
		audit:   new(serviceMocks.MockAuditTrail),
	}
	s.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.ClientCountry(edgeCountryHeader))
	RegisterRoutes(s.app, db, stubVerifier{}, Services{
		Content:        s.content,
		ShareLinks:     s.links,
		AccessRequests: s.reqs,
		Audit:          s.audit,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, target, token, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/rooms/r1/capabilities"},
		{http.MethodGet, "/files/f1/view"},
		{http.MethodGet, "/files/f1/download"},
		{http.MethodPost, "/share-links"},
		{http.MethodGet, "/share-links?targetType=FILE&targetId=f1"},
		{http.MethodDelete, "/share-links/s1"},
		{http.MethodPost, "/rooms/r1/access-requests"},
		{http.MethodGet, "/rooms/r1/access-requests"},
		{http.MethodPost, "/access-requests/a1/review"},
		{http.MethodGet, "/rooms/r1/audit"},
		{http.MethodGet, "/rooms/r1/audit/summary"},
	}

	for _, tt := range routes {
		for _, token := range []string{"", "forged"} {
			t.Run(fmt.Sprintf("%s %s token=%q", tt.method, tt.target, token), func(t *testing.T) {
				resp := s.do(t, tt.method, tt.target, token, "")

				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				body := decodeError(t, resp)
				assert.Equal(t, "AUTHENTICATION_FAILED", body.Error.Code)
				assert.NotEmpty(t, body.RequestID)
			})
		}
	}

	s.content.AssertNotCalled(t, "ViewFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.links.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.audit.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestViewFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		view := &service.FileView{
			PointerURL:  "https://objects.example/tmp/watermarks/a?sig=1",
			ExpiresAt:   time.Date(2026, 3, 2, 10, 35, 0, 0, time.UTC),
			File:        &model.File{ID: "f1", Name: "q3.pdf"},
			Watermarked: true,
		}
		s.content.On("ViewFile", mock.Anything, alice, "f1", mock.Anything).Return(view, nil).Once()

		resp := s.do(t, http.MethodGet, "/files/f1/view", "alice-token", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		var got service.FileView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, view.PointerURL, got.PointerURL)
		assert.True(t, got.Watermarked)
		s.content.AssertExpectations(t)
	})

	t.Run("denied", func(t *testing.T) {
		s := newTestServer(t)
		s.content.On("ViewFile", mock.Anything, alice, "f1", mock.Anything).
			Return(nil, fmt.Errorf("resolve: %w", service.ErrPermissionDenied)).Once()

		resp := s.do(t, http.MethodGet, "/files/f1/view", "alice-token", "")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "PERMISSION_DENIED", body.Error.Code)
		assert.Equal(t, "permission denied", body.Error.Message)
	})

	t.Run("request meta reaches the service", func(t *testing.T) {
		s := newTestServer(t)
		s.content.On("ViewFile", mock.Anything, alice, "f1", mock.MatchedBy(func(m model.RequestMeta) bool {
			return m.Country == "DE" && m.RequestID == "req-42" && m.UserAgent == "dataroom-test/1.0"
		})).Return(&service.FileView{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/files/f1/view", nil)
		req.Header.Set("Authorization", "Bearer alice-token")
		req.Header.Set(edgeCountryHeader, "de")
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		req.Header.Set("User-Agent", "dataroom-test/1.0")
		resp, err := s.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.content.AssertExpectations(t)
	})
}

func TestDownloadFile(t *testing.T) {
	s := newTestServer(t)
	s.content.On("DownloadFile", mock.Anything, alice, "f1", mock.Anything).
		Return(&service.FileView{PointerURL: "https://objects.example/f1", CanDownload: true}, nil).Once()
	s.content.On("DownloadFile", mock.Anything, alice, "f2", mock.Anything).
		Return(nil, service.ErrPermissionDenied).Once()

	resp := s.do(t, http.MethodGet, "/files/f1/download", "alice-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/files/f2/download", "alice-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	s.content.AssertExpectations(t)
}

func TestRoomCapabilities(t *testing.T) {
	s := newTestServer(t)
	caps := model.EffectiveCapabilities{Role: model.RoleViewer, View: true, Watermark: true, DenyReason: "never-serialized"}
	s.content.On("Capabilities", mock.Anything, alice, "r1", "fo1", mock.Anything).Return(caps, nil).Once()

	resp := s.do(t, http.MethodGet, "/rooms/r1/capabilities?folderId=fo1", "alice-token", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"view":true`)
	assert.NotContains(t, string(raw), "never-serialized")
	s.content.AssertExpectations(t)
}

func TestConsumeShareLink(t *testing.T) {
	result := &service.ConsumeResult{
		ShareID:    "s1",
		TargetType: model.TargetFile,
		File:       &model.File{ID: "f1"},
		Content:    &service.Rendition{URL: "https://objects.example/art", Watermarked: true},
	}

	t.Run("anonymous with password", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Consume", mock.Anything, mock.MatchedBy(func(r service.ConsumeRequest) bool {
			return r.Token == "tok123" && r.Password == "hunter2" && r.Requester == nil
		})).Return(result, nil).Once()

		resp := s.do(t, http.MethodPost, "/share/tok123", "", `{"password":"hunter2"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		var got service.ConsumeResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "https://objects.example/art", got.Content.URL)
		s.links.AssertExpectations(t)
	})

	t.Run("authenticated requester is forwarded", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Consume", mock.Anything, mock.MatchedBy(func(r service.ConsumeRequest) bool {
			return r.Requester != nil && r.Requester.UserID == alice.UserID && r.Password == ""
		})).Return(result, nil).Once()

		resp := s.do(t, http.MethodPost, "/share/tok123", "alice-token", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.links.AssertExpectations(t)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Consume", mock.Anything, mock.MatchedBy(func(r service.ConsumeRequest) bool {
			return r.Requester == nil
		})).Return(result, nil).Once()

		resp := s.do(t, http.MethodPost, "/share/tok123", "forged", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.links.AssertExpectations(t)
	})

	t.Run("folder route", func(t *testing.T) {
		s := newTestServer(t)
		folder := &service.ConsumeResult{ShareID: "s2", TargetType: model.TargetFolder, TotalFiles: 2}
		s.links.On("Consume", mock.Anything, mock.Anything).Return(folder, nil).Once()

		resp := s.do(t, http.MethodPost, "/shared/folder/tok456", "", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.links.AssertExpectations(t)
	})

	t.Run("every failure looks the same", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Consume", mock.Anything, mock.Anything).Return(nil, service.ErrLinkInvalid).Once()

		resp := s.do(t, http.MethodPost, "/share/expired", "", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "LINK_INVALID", body.Error.Code)
		assert.Equal(t, "invalid or expired link", body.Error.Message)
	})

	t.Run("malformed body is passed on flagged", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Consume", mock.Anything, mock.MatchedBy(func(r service.ConsumeRequest) bool {
			return r.Token == "tok123" && r.Malformed && r.Password == ""
		})).Return(nil, service.ErrLinkInvalid).Once()

		resp := s.do(t, http.MethodPost, "/share/tok123", "", `{"password":`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "LINK_INVALID", decodeError(t, resp).Error.Code)
		s.links.AssertExpectations(t)
	})
}

func TestOpenSharedFile(t *testing.T) {
	s := newTestServer(t)
	s.links.On("OpenSharedFile", mock.Anything, mock.MatchedBy(func(r service.ConsumeRequest) bool {
		return r.Token == "tok456"
	}), "f9").Return(&service.ConsumeResult{ShareID: "s2", File: &model.File{ID: "f9"}}, nil).Once()
	s.links.On("OpenSharedFile", mock.Anything, mock.Anything, "outside").Return(nil, service.ErrLinkInvalid).Once()

	resp := s.do(t, http.MethodPost, "/shared/folder/tok456/files/f9", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/shared/folder/tok456/files/outside", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	s.links.AssertExpectations(t)
}

func TestIssueShareLink(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		s := newTestServer(t)
		issued := &service.IssuedLink{ShareID: "s1", Token: "tok", ShareURL: "https://rooms.example/share/tok"}
		s.links.On("Issue", mock.Anything, alice, mock.MatchedBy(func(r service.IssueRequest) bool {
			return r.TargetType == model.TargetFile && r.TargetID == "f1" && r.MaxViews != nil && *r.MaxViews == 3
		}), mock.Anything).Return(issued, nil).Once()

		resp := s.do(t, http.MethodPost, "/share-links", "alice-token",
			`{"target_type":"FILE","target_id":"f1","max_views":3,"allow_download":true}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got service.IssuedLink
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "tok", got.Token)
		s.links.AssertExpectations(t)
	})

	t.Run("bad body", func(t *testing.T) {
		s := newTestServer(t)

		resp := s.do(t, http.MethodPost, "/share-links", "alice-token", `not json`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		s := newTestServer(t)
		s.links.On("Issue", mock.Anything, alice, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: max_views must be positive", service.ErrInvalidInput)).Once()

		resp := s.do(t, http.MethodPost, "/share-links", "alice-token", `{"target_type":"FILE","target_id":"f1","max_views":0}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
		assert.Contains(t, body.Error.Message, "max_views")
	})
}

func TestListShareLinks(t *testing.T) {
	s := newTestServer(t)
	s.links.On("List", mock.Anything, alice, model.TargetFolder, "fo1", mock.Anything).
		Return([]model.ShareLink{{ID: "s1", Token: "secret-token"}}, nil).Once()

	resp := s.do(t, http.MethodGet, "/share-links?targetType=FOLDER&targetId=fo1", "alice-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	resp = s.do(t, http.MethodGet, "/share-links?targetType=ROOM&targetId=r1", "alice-token", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	s.links.AssertExpectations(t)
}

func TestRevokeShareLink(t *testing.T) {
	s := newTestServer(t)
	s.links.On("Revoke", mock.Anything, alice, "s1", mock.Anything).Return(nil).Once()
	s.links.On("Revoke", mock.Anything, alice, "s2", mock.Anything).Return(service.ErrPermissionDenied).Once()

	resp := s.do(t, http.MethodDelete, "/share-links/s1", "alice-token", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/share-links/s2", "alice-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	s.links.AssertExpectations(t)
}

func TestCreateAccessRequest(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "duplicate", err: service.ErrDuplicateRequest, wantStatus: http.StatusConflict, wantCode: "DUPLICATE_REQUEST"},
		{name: "closed room", err: fmt.Errorf("%w: room is not open", service.ErrInvalidState), wantStatus: http.StatusConflict, wantCode: "INVALID_STATE"},
		{name: "missing room", err: service.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			var out *model.AccessRequest
			if tt.err == nil {
				out = &model.AccessRequest{ID: "a1", RoomID: "r1", Status: model.AccessRequestPending}
			}
			s.reqs.On("Create", mock.Anything, alice, "r1", "fo1", "need the financials", mock.Anything).Return(out, tt.err).Once()

			resp := s.do(t, http.MethodPost, "/rooms/r1/access-requests", "alice-token",
				`{"folder_id":"fo1","reason":"need the financials"}`)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
			}
			s.reqs.AssertExpectations(t)
		})
	}
}

func TestReviewAccessRequest(t *testing.T) {
	s := newTestServer(t)
	reviewed := &model.AccessRequest{ID: "a1", Status: model.AccessRequestApproved, GrantedRole: model.RoleContributor}
	s.reqs.On("Review", mock.Anything, alice, "a1", service.ReviewInput{Decision: model.DecisionApprove, Role: model.RoleContributor}, mock.Anything).
		Return(reviewed, nil).Once()
	s.reqs.On("Review", mock.Anything, alice, "a2", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: request already reviewed", service.ErrInvalidState)).Once()

	resp := s.do(t, http.MethodPost, "/access-requests/a1/review", "alice-token", `{"decision":"APPROVE","role":"CONTRIBUTOR"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/access-requests/a2/review", "alice-token", `{"decision":"DENY"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decodeError(t, resp).Error.Code)
	s.reqs.AssertExpectations(t)
}

func TestListAccessRequests(t *testing.T) {
	s := newTestServer(t)
	s.reqs.On("ListPending", mock.Anything, alice, "r1", mock.Anything).
		Return([]model.AccessRequest{{ID: "a1"}, {ID: "a2"}}, nil).Once()

	resp := s.do(t, http.MethodGet, "/rooms/r1/access-requests", "alice-token", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Items []model.AccessRequest `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Items, 2)
	s.reqs.AssertExpectations(t)
}

func TestExportAudit(t *testing.T) {
	t.Run("filters are parsed", func(t *testing.T) {
		s := newTestServer(t)
		s.audit.On("Export", mock.Anything, alice, "r1", mock.MatchedBy(func(f model.AuditFilter) bool {
			return f.ActorID == "u-bob" && f.Action == model.AuditDownload &&
				f.Limit == 50 && f.Offset == 10 &&
				f.From != nil && f.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) && f.To == nil
		}), mock.Anything).Return([]model.AuditEvent{{ID: "e1", Action: model.AuditDownload}}, nil).Once()

		resp := s.do(t, http.MethodGet,
			"/rooms/r1/audit?actorId=u-bob&action=DOWNLOAD&limit=50&offset=10&from=2026-03-01T00:00:00Z", "alice-token", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.audit.AssertExpectations(t)
	})

	t.Run("invalid filters", func(t *testing.T) {
		s := newTestServer(t)
		for _, q := range []string{"from=yesterday", "limit=0", "limit=5000", "offset=-1"} {
			resp := s.do(t, http.MethodGet, "/rooms/r1/audit?"+q, "alice-token", "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		}
		s.audit.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no audit capability", func(t *testing.T) {
		s := newTestServer(t)
		s.audit.On("Export", mock.Anything, alice, "r1", mock.Anything, mock.Anything).Return(nil, service.ErrPermissionDenied).Once()

		resp := s.do(t, http.MethodGet, "/rooms/r1/audit", "alice-token", "")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAuditSummary(t *testing.T) {
	s := newTestServer(t)
	s.audit.On("Aggregate", mock.Anything, alice, "r1", mock.Anything, model.GroupByDay, mock.Anything).
		Return([]model.AuditAggregate{{Key: "2026-03-02", Count: 4}}, nil).Once()
	s.audit.On("Aggregate", mock.Anything, alice, "r1", mock.Anything, model.AuditGroupBy("weekday"), mock.Anything).
		Return(nil, fmt.Errorf("%w: unsupported groupBy", service.ErrInvalidInput)).Once()

	resp := s.do(t, http.MethodGet, "/rooms/r1/audit/summary?groupBy=day", "alice-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/rooms/r1/audit/summary?groupBy=weekday", "alice-token", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	s.audit.AssertExpectations(t)
}

func TestWriteServiceError_HidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return writeServiceError(c, errors.New("pq: relation \"rooms\" does not exist"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "rooms")
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/known", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
}
