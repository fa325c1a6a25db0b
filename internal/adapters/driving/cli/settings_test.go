package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReadLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  first \nsecond"))

	assert.Equal(t, "first", readLine(reader))
	assert.Equal(t, "second", readLine(reader))
	assert.Equal(t, "", readLine(reader))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434", defaultBaseURL(domain.AIProviderOllama))
	assert.Equal(t, "https://api.openai.com/v1", defaultBaseURL(domain.AIProviderOpenAI))
}

func TestSettingsShow(t *testing.T) {
	env := setupTestServices(t)
	env.settings.settings.Embedding.APIKey = "sk-1234567890abcdef"

	out, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Library]")
	assert.Contains(t, out, "Intake: "+env.settings.settings.Library.IntakeDir())
	assert.Contains(t, out, "Model: nomic-embed-text")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Enabled: no (one chunk per page)")
	assert.Contains(t, out, "Limit: 10")
	assert.Contains(t, out, "Status: ok")
}

func TestSettingsShow_Invalid(t *testing.T) {
	env := setupTestServices(t)
	env.settings.validateErr = errors.New("embedding model is not set")

	out, err := executeCommand(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: invalid (embedding model is not set)")
}

func TestSettingsSet(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "", "settings", "set", "store.backend", "badger")

	require.NoError(t, err)
	assert.Equal(t, "badger", env.settings.sets["store.backend"])
	assert.Contains(t, out, "store.backend = badger")
}

func TestSettingsSet_Rejected(t *testing.T) {
	env := setupTestServices(t)
	env.settings.setErr = domain.ErrInvalidInput

	_, err := executeCommand(t, "", "settings", "set", "store.backend", "mongo")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeys(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "", "settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding.model\n")
	assert.Contains(t, out, "retrieval.limit\n")
}

func TestSettings_NoService(t *testing.T) {
	setupTestServices(t)
	settingsService = nil

	for _, args := range [][]string{{"settings"}, {"settings", "keys"}, {"settings", "set", "a", "b"}, {"settings", "embedding"}} {
		_, err := executeCommand(t, "", args...)
		assert.EqualError(t, err, "settings service not configured", args)
	}
}

func TestSettingsEmbedding_OpenAI(t *testing.T) {
	env := setupTestServices(t)
	var validated *domain.EmbeddingSettings
	oldValidator := embeddingValidator
	embeddingValidator = func(_ context.Context, s *domain.EmbeddingSettings) error {
		validated = s
		return nil
	}
	defer func() { embeddingValidator = oldValidator }()

	// provider, model, base URL, API key, dimensions
	out, err := executeCommand(t, "2\n\nhttp://localhost:8080/v1\nsk-test\n\n", "settings", "embedding")

	require.NoError(t, err)
	require.NotNil(t, env.settings.saved)
	got := env.settings.saved.Embedding
	assert.Equal(t, domain.AIProviderOpenAI, got.Provider)
	assert.Equal(t, "text-embedding-3-small", got.Model)
	assert.Equal(t, "http://localhost:8080/v1", got.BaseURL)
	assert.Equal(t, "sk-test", got.APIKey)
	assert.Equal(t, domain.EmbeddingDimensions()["text-embedding-3-small"], got.Dimensions)
	require.NotNil(t, validated)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsEmbedding_Defaults(t *testing.T) {
	env := setupTestServices(t)
	oldValidator := embeddingValidator
	embeddingValidator = nil
	defer func() { embeddingValidator = oldValidator }()

	_, err := executeCommand(t, "\nmxbai-embed-large\n\n\n", "settings", "embedding")

	require.NoError(t, err)
	got := env.settings.saved.Embedding
	assert.Equal(t, domain.AIProviderOllama, got.Provider)
	assert.Equal(t, "mxbai-embed-large", got.Model)
	assert.Equal(t, "http://localhost:11434", got.BaseURL)
	assert.Equal(t, 1024, got.Dimensions)
	assert.Empty(t, got.APIKey)
}

func TestSettingsEmbedding_BadDimensions(t *testing.T) {
	env := setupTestServices(t)

	_, err := executeCommand(t, "1\n\n\nzero\n", "settings", "embedding")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, env.settings.saved)
}

func TestSettingsEmbedding_ValidationFails(t *testing.T) {
	env := setupTestServices(t)
	oldValidator := embeddingValidator
	embeddingValidator = func(context.Context, *domain.EmbeddingSettings) error {
		return domain.ErrEmbeddingUnavailable
	}
	defer func() { embeddingValidator = oldValidator }()

	out, err := executeCommand(t, "\n\n\n\n", "settings", "embedding")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, out, "FAILED")
	assert.Nil(t, env.settings.saved)
}
