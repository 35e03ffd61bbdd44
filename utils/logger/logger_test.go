package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LoggerTestSuite defines a test suite for logger functions
type LoggerTestSuite struct {
	suite.Suite
	buffer *bytes.Buffer
}

// SetupTest runs before each test
func (suite *LoggerTestSuite) SetupTest() {
	suite.buffer = &bytes.Buffer{}
}

// Helper function to create a logger writing into the suite buffer
func (suite *LoggerTestSuite) createLoggerWithBuffer(level, format string) Logger {
	l := logrus.New()
	l.SetOutput(suite.buffer)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     false,
		})
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// TestNewLogger tests the NewLogger function with different configurations
func (suite *LoggerTestSuite) TestNewLogger() {
	testCases := []struct {
		name   string
		level  string
		format string
	}{
		{"Debug level with JSON format", "debug", "json"},
		{"Info level with text format", "info", "text"},
		{"Warn level with JSON format", "warn", "json"},
		{"Error level with text format", "error", "text"},
		{"Invalid level defaults to info", "invalid", "json"},
		{"Empty level defaults to info", "", "text"},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			logger := NewLogger(tc.level, tc.format)
			assert.NotNil(t, logger)
			assert.Implements(t, (*Logger)(nil), logger)
		})
	}
}

// TestLoggerLevels tests level filtering
func (suite *LoggerTestSuite) TestLoggerLevels() {
	testCases := []struct {
		name      string
		level     string
		logFunc   func(Logger)
		shouldLog bool
	}{
		{"Debug level logs debug messages", "debug", func(l Logger) { l.Debug("debug message") }, true},
		{"Info level skips debug messages", "info", func(l Logger) { l.Debug("debug message") }, false},
		{"Info level logs info messages", "info", func(l Logger) { l.Info("info message") }, true},
		{"Warn level logs warn messages", "warn", func(l Logger) { l.Warn("warn message") }, true},
		{"Warn level skips info messages", "warn", func(l Logger) { l.Info("info message") }, false},
		{"Error level logs error messages", "error", func(l Logger) { l.Error("error message") }, true},
		{"Error level skips warn messages", "error", func(l Logger) { l.Warn("warn message") }, false},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			logger := suite.createLoggerWithBuffer(tc.level, "text")
			suite.buffer.Reset()

			tc.logFunc(logger)

			output := suite.buffer.String()
			if tc.shouldLog {
				assert.NotEmpty(t, output)
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

// TestFormattedMethods tests the printf-style variants
func (suite *LoggerTestSuite) TestFormattedMethods() {
	logger := suite.createLoggerWithBuffer("debug", "text")

	suite.buffer.Reset()
	logger.Debugf("debug message with %s and %d", "string", 42)
	assert.Contains(suite.T(), suite.buffer.String(), "debug message with string and 42")

	suite.buffer.Reset()
	logger.Infof("job %s refreshed", "job-1")
	assert.Contains(suite.T(), suite.buffer.String(), "job job-1 refreshed")

	suite.buffer.Reset()
	logger.Warnf("refresh failed: %v", "timeout")
	assert.Contains(suite.T(), suite.buffer.String(), "refresh failed: timeout")

	suite.buffer.Reset()
	logger.Errorf("unexpected: %d", 7)
	assert.Contains(suite.T(), suite.buffer.String(), "unexpected: 7")
}

// TestJSONFormat tests structured JSON output
func (suite *LoggerTestSuite) TestJSONFormat() {
	logger := suite.createLoggerWithBuffer("info", "json")

	logger.Info("structured message")

	var parsed map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(suite.buffer.Bytes(), &parsed))
	assert.Equal(suite.T(), "structured message", parsed["msg"])
	assert.Equal(suite.T(), "info", parsed["level"])
}

// TestWithField tests field scoping
func (suite *LoggerTestSuite) TestWithField() {
	logger := suite.createLoggerWithBuffer("info", "json")

	logger.WithField("jobID", "job-1").Info("accepted")

	var parsed map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(suite.buffer.Bytes(), &parsed))
	assert.Equal(suite.T(), "job-1", parsed["jobID"])

	// The parent logger is not polluted by the scoped field.
	suite.buffer.Reset()
	logger.Info("plain")
	parsed = map[string]interface{}{}
	require.NoError(suite.T(), json.Unmarshal(suite.buffer.Bytes(), &parsed))
	_, hasField := parsed["jobID"]
	assert.False(suite.T(), hasField)
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}
