package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agenda-sync/domain/feed"
)

func TestLoadConfig_MemoryModeDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("HTTP_TIMEOUT", "30")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.UsesMemoryStorage())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "AgendaFetcher", cfg.MetricsNamespace)
	assert.Equal(t, "AgendaFetcher/1.0", cfg.UserAgent)
}

func TestLoadConfig_AWSModeRequiresTableAndBucket(t *testing.T) {
	t.Setenv("STORAGE_MODE", "aws")
	t.Setenv("DYNAMODB_TABLE_NAME", "")
	t.Setenv("TABLE_NAME", "")
	t.Setenv("S3_BUCKET", "")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DynamoDBTable")
}

func TestLoadConfig_RejectsBadURL(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("SESSIONIZE_API_URL", "not a url")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestValidateFetcher(t *testing.T) {
	cfg := &Config{
		SessionizeURL: "https://sessionize.com/api/v2/abc/view/All",
		AppSyncURL:    "https://example.appsync-api.us-east-1.amazonaws.com/graphql",
	}
	err := cfg.ValidateFetcher()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APPSYNC_API_KEY")

	cfg.AppSyncAPIKey = "da2-key"
	assert.NoError(t, cfg.ValidateFetcher())
}

func TestLoadRules_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
excluded_title_keywords: ["Lunch", "Coffee"]
room_capacities:
  auditorium: 400
default_capacity: 60
level_translations:
  "L100 (Beginner)": Principiante
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch", "Coffee"}, rules.ExcludedTitleKeywords)
	assert.Equal(t, 400, rules.RoomCapacities["auditorium"])
	assert.Equal(t, 60, rules.DefaultCapacity)
	assert.Equal(t, "Principiante", rules.LevelTranslations["L100 (Beginner)"])
	assert.Equal(t, feed.DefaultRules().LevelPatterns, rules.LevelPatterns)
	assert.True(t, rules.ExcludeServiceSessions)
}

func TestLoadRules_EmptyPathAndEmptyFile(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, feed.DefaultRules(), rules)

	var decoded = feed.DefaultRules()
	require.NoError(t, DecodeRules(strings.NewReader(""), &decoded))
	assert.Equal(t, feed.DefaultRules(), decoded)
}

func TestLoadRules_UnknownKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exclude_titles: [x]\n"), 0o600))

	_, err := LoadRules(path)

	assert.Error(t, err)
}

func TestRulesWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_capacity: 10\n"), 0o600))

	w, err := NewRulesWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	assert.Equal(t, 10, w.Current().DefaultCapacity)

	changed := make(chan feed.Rules, 1)
	w.OnChange(func(r feed.Rules) {
		select {
		case changed <- r:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("default_capacity: 25\n"), 0o600))

	select {
	case r := <-changed:
		assert.Equal(t, 25, r.DefaultCapacity)
		assert.Equal(t, 25, w.Current().DefaultCapacity)
	case <-time.After(5 * time.Second):
		t.Fatal("rules were not reloaded")
	}
}
