package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fieldops-client/cache"
	"fieldops-client/models"
	"fieldops-client/services"
	"fieldops-client/utils/logger"
	"fieldops-client/worker"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockControllerLogger implements the logger interface for controller tests
type MockControllerLogger struct {
	mock.Mock
}

func (m *MockControllerLogger) Debug(args ...interface{}) {
	m.Called(args)
}

func (m *MockControllerLogger) Debugf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockControllerLogger) Info(args ...interface{}) {
	m.Called(args)
}

func (m *MockControllerLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockControllerLogger) Warn(args ...interface{}) {
	m.Called(args)
}

func (m *MockControllerLogger) Warnf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockControllerLogger) Error(args ...interface{}) {
	m.Called(args)
}

func (m *MockControllerLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockControllerLogger) Fatal(args ...interface{}) {
	m.Called(args)
}

func (m *MockControllerLogger) Fatalf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockControllerLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

// MockStateMachine implements JobStateMachineInterface for testing
type MockStateMachine struct {
	mock.Mock
}

func (m *MockStateMachine) AttemptTransition(ctx context.Context, jobID string, action models.TransitionAction, technicianID, notes string) (models.Job, error) {
	args := m.Called(ctx, jobID, action, technicianID, notes)
	return args.Get(0).(models.Job), args.Error(1)
}

// JobControllerTestSuite contains the test suite for JobController
type JobControllerTestSuite struct {
	suite.Suite
	ctx         context.Context
	mockMachine *MockStateMachine
	mockLogger  *MockControllerLogger
	state       *services.TechnicianState
	location    *services.LocationTracker
	controller  *JobController
	router      *gin.Engine
}

func (suite *JobControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctx = context.Background()
	suite.mockMachine = &MockStateMachine{}
	suite.mockLogger = &MockControllerLogger{}

	suite.mockLogger.On("Debug", mock.Anything).Maybe()
	suite.mockLogger.On("Debugf", mock.Anything, mock.Anything).Maybe()
	suite.mockLogger.On("Info", mock.Anything).Maybe()
	suite.mockLogger.On("Infof", mock.Anything, mock.Anything).Maybe()
	suite.mockLogger.On("Warn", mock.Anything).Maybe()
	suite.mockLogger.On("Warnf", mock.Anything, mock.Anything).Maybe()
	suite.mockLogger.On("Error", mock.Anything).Maybe()
	suite.mockLogger.On("Errorf", mock.Anything, mock.Anything).Maybe()

	suite.state = services.NewTechnicianState()
	suite.location = services.NewLocationTracker()

	cfg := &models.Config{JobPollSeconds: 8, StatsPollSeconds: 60}
	snapshots := cache.NewSnapshotCache("", nil, suite.mockLogger)
	syncService, err := worker.NewService(cfg, nil, suite.state, snapshots, "tech-1", suite.mockLogger)
	assert.NoError(suite.T(), err)

	suite.controller = NewJobController(suite.ctx, suite.state, suite.location, suite.mockMachine, syncService, "tech-1", suite.mockLogger)

	suite.router = gin.New()
	suite.router.GET("/jobs", suite.controller.GetJobs)
	suite.router.GET("/jobs/stats", suite.controller.GetStats)
	suite.router.GET("/jobs/:id", suite.controller.GetJob)
	suite.router.POST("/jobs/:id/accept", suite.controller.Accept)
	suite.router.POST("/jobs/:id/start", suite.controller.Start)
	suite.router.POST("/jobs/:id/pause", suite.controller.Pause)
	suite.router.PUT("/location", suite.controller.UpdateLocation)
	suite.router.POST("/clock/in", suite.controller.ClockIn)
}

func (suite *JobControllerTestSuite) TearDownTest() {
	suite.mockMachine.AssertExpectations(suite.T())
}

func (suite *JobControllerTestSuite) seedJobs() {
	suite.state.ReplaceJobs([]*models.Job{
		{JobID: "job-1", TechnicianID: "tech-1", Status: models.JobStatusAssigned},
		{JobID: "job-2", TechnicianID: "tech-1", Status: models.JobStatusCompleted},
	})
}

func (suite *JobControllerTestSuite) perform(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		assert.NoError(suite.T(), err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *JobControllerTestSuite) TestGetJobsDefaultsToActiveView() {
	suite.seedJobs()

	w := suite.perform(http.MethodGet, "/jobs", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.APIResponse
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "success", response.Status)

	data := response.Data.(map[string]interface{})
	assert.Equal(suite.T(), float64(1), data["count"])
	assert.Equal(suite.T(), "active", data["view"])
}

func (suite *JobControllerTestSuite) TestGetJobsCompletedView() {
	suite.seedJobs()

	w := suite.perform(http.MethodGet, "/jobs?view=completed", nil)

	var response models.APIResponse
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	data := response.Data.(map[string]interface{})
	assert.Equal(suite.T(), float64(1), data["count"])
}

func (suite *JobControllerTestSuite) TestGetJobsRejectsUnknownView() {
	w := suite.perform(http.MethodGet, "/jobs?view=archived", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *JobControllerTestSuite) TestGetJobNotFound() {
	w := suite.perform(http.MethodGet, "/jobs/missing", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *JobControllerTestSuite) TestAcceptJob() {
	suite.seedJobs()
	accepted := time.Now()
	suite.mockMachine.On("AttemptTransition", suite.ctx, "job-1", models.ActionAccept, "tech-1", "").
		Return(models.Job{JobID: "job-1", Status: models.JobStatusAccepted, AcceptedAt: &accepted}, nil)

	w := suite.perform(http.MethodPost, "/jobs/job-1/accept", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.APIResponse
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "success", response.Status)
}

func (suite *JobControllerTestSuite) TestIllegalTransitionMapsToConflict() {
	suite.mockMachine.On("AttemptTransition", suite.ctx, "job-2", models.ActionAccept, "tech-1", "").
		Return(models.Job{}, &models.IllegalTransitionError{Status: models.JobStatusCompleted, Action: models.ActionAccept})

	w := suite.perform(http.MethodPost, "/jobs/job-2/accept", nil)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response models.APIResponse
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "IllegalTransition", response.Error.Type)
}

func (suite *JobControllerTestSuite) TestMissingLocationMapsToPreconditionFailed() {
	suite.mockMachine.On("AttemptTransition", suite.ctx, "job-1", models.ActionStart, "tech-1", "").
		Return(models.Job{}, &models.PreconditionMissingError{Missing: "location fix"})

	w := suite.perform(http.MethodPost, "/jobs/job-1/start", nil)

	assert.Equal(suite.T(), http.StatusPreconditionFailed, w.Code)
}

func (suite *JobControllerTestSuite) TestPauseCarriesNotes() {
	suite.mockMachine.On("AttemptTransition", suite.ctx, "job-1", models.ActionPause, "tech-1", "customer unavailable").
		Return(models.Job{JobID: "job-1", Status: models.JobStatusAccepted}, nil)

	w := suite.perform(http.MethodPost, "/jobs/job-1/pause", models.TransitionRequest{Notes: "customer unavailable"})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *JobControllerTestSuite) TestUpdateLocation() {
	w := suite.perform(http.MethodPut, "/location", models.Location{Latitude: 51.5, Longitude: -0.12})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	loc, ok := suite.location.CurrentLocation()
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), 51.5, loc.Latitude)
}

func (suite *JobControllerTestSuite) TestUpdateLocationRejectsOutOfRange() {
	w := suite.perform(http.MethodPut, "/location", map[string]interface{}{
		"latitude":  123.0,
		"longitude": 0.5,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *JobControllerTestSuite) TestClockIn() {
	w := suite.perform(http.MethodPost, "/clock/in", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestJobControllerTestSuite(t *testing.T) {
	suite.Run(t, new(JobControllerTestSuite))
}
