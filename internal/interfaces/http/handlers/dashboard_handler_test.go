package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/chart"
	"github.com/turtacn/Trilemma-Dashboard/internal/testutil"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

type DashboardHandlerTestSuite struct {
	suite.Suite
	logger *testutil.MockLogger
	router chi.Router
}

func (s *DashboardHandlerTestSuite) SetupTest() {
	s.logger = testutil.NewMockLogger()
	svc := dashboard.NewService(testutil.SampleTable(s.T()), nil, nil, s.logger)
	h := NewDashboardHandler(svc, chart.Options{AssetsHost: "/assets/"}, s.logger)

	r := chi.NewRouter()
	h.RegisterPage(r)
	r.Route("/api/v1", h.RegisterRoutes)
	s.router = r
}

func (s *DashboardHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *DashboardHandlerTestSuite) TestOptions() {
	w := s.get("/api/v1/options")
	s.Require().Equal(http.StatusOK, w.Code)

	var got dashboard.Options
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal([]string{"BA", "RJ", "SP"}, got.States)
	s.Equal([]string{"2018", "2019", "2020"}, got.Years)
	s.Equal(indicator.Selection{State: "BA", Year: "2018"}, got.Default)
}

func (s *DashboardHandlerTestSuite) TestView() {
	w := s.get("/api/v1/view?state=SP&year=2019")
	s.Require().Equal(http.StatusOK, w.Code)

	var vm dashboard.ViewModel
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &vm))
	s.Equal("Interactive 3D Vectors - State: SP", vm.Title)
	s.Equal(dashboard.Point{X: 6, Y: 8, Z: 2}, vm.Generic)
	r, ok := vm.Readout(dashboard.KeyGenericX)
	s.Require().True(ok)
	s.Equal("53.96°", r.Value)
}

func (s *DashboardHandlerTestSuite) TestView_UndefinedAnglesStillRender() {
	w := s.get("/api/v1/view?state=RJ&year=2020")
	s.Require().Equal(http.StatusOK, w.Code)

	var vm dashboard.ViewModel
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &vm))
	r, ok := vm.Readout(dashboard.KeyGenericIdeal)
	s.Require().True(ok)
	s.Equal(dashboard.Placeholder, r.Value)
	s.Equal(errors.ErrCodeUndefinedAngle.String(), r.ErrorCode)

	ideal, ok := vm.Readout(dashboard.KeyIdealX)
	s.Require().True(ok)
	s.Equal("54.74°", ideal.Value)
}

func (s *DashboardHandlerTestSuite) TestView_NoData() {
	w := s.get("/api/v1/view?state=SP&year=2020")
	s.Equal(http.StatusNotFound, w.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(errors.ErrCodeNoDataForSelection.String(), resp.Error.Code)
	s.Equal("state=SP year=2020", resp.Error.Detail)
}

func (s *DashboardHandlerTestSuite) TestView_MissingParameter() {
	w := s.get("/api/v1/view?state=SP")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *DashboardHandlerTestSuite) TestChartSnippet() {
	w := s.get("/api/v1/chart?state=SP&year=2019")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/html")
	s.Contains(w.Body.String(), chart.GenericSeries)
	s.NotContains(w.Body.String(), "<html")
}

func (s *DashboardHandlerTestSuite) TestPage_DefaultSelection() {
	w := s.get("/")
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()

	s.Contains(body, "<title>Interactive 3D Vectors - State: BA</title>")
	s.Contains(body, `<option value="BA" selected>`)
	s.Contains(body, `<option value="2018" selected>`)
	s.Contains(body, `<script src="/assets/echarts-gl.min.js"></script>`)
	s.Contains(body, "Ideal vector with X axis: 54.74°")
	s.Contains(body, `class="undefined"`)
	s.Contains(body, "Dimensions compared among themselves")
}

func (s *DashboardHandlerTestSuite) TestPage_NoDataShowsNotice() {
	w := s.get("/?state=RJ&year=2018")
	s.Equal(http.StatusNotFound, w.Code)
	body := w.Body.String()
	s.Contains(body, "No data for state RJ in 2018.")
	s.Contains(body, `<option value="RJ" selected>`)
	s.NotContains(body, "Ideal vector with X axis")
}

func (s *DashboardHandlerTestSuite) TestPage_EscapesSelection() {
	w := s.get("/?state=%3Cscript%3E&year=2018")
	s.Equal(http.StatusNotFound, w.Code)
	s.False(strings.Contains(w.Body.String(), "<script>"))
}

func TestDashboardHandlerSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerTestSuite))
}

type failingService struct{ err error }

func (f failingService) Options(context.Context) (*dashboard.Options, error) { return nil, f.err }
func (f failingService) ComputeView(context.Context, indicator.Selection) (*dashboard.ViewModel, error) {
	return nil, f.err
}

func TestDashboardHandler_InternalErrorsMasked(t *testing.T) {
	logger := testutil.NewMockLogger()
	h := NewDashboardHandler(failingService{err: errors.New(errors.ErrCodeDatasetInvalid, "sheet has no rows").WithDetail("secret path")}, chart.Options{}, logger)
	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/options", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"TRI_003","message":"invalid indicator dataset"}}`, w.Body.String())
	assert.True(t, logger.HasMessage("error", "request failed"))
}

func TestErrorResponse_PlainError(t *testing.T) {
	status, resp := errorResponse(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, errors.ErrCodeInternal.String(), resp.Error.Code)
}

//Personal.AI order the ending
