package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "STORAGE_MODE", "ADMIN_USER_IDS", "CURSOR_SECRET", "LEADERBOARD_REFRESH", "JWT_SECRET"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, StoragePostgres, c.StorageMode)
	assert.Empty(t, c.AdminUserIDs)
	assert.Len(t, c.CursorSecret, 32)
	assert.Equal(t, time.Minute, c.LeaderboardRefresh)
	require.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("ADMIN_USER_IDS", " user_a, ,user_b ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CURSOR_SECRET", "abc")
	t.Setenv("LEADERBOARD_REFRESH", "15s")

	c := FromEnv()
	assert.Equal(t, StorageMemory, c.StorageMode)
	assert.Equal(t, []string{"user_a", "user_b"}, c.AdminUserIDs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
	assert.Equal(t, []byte("abc"), c.CursorSecret)
	assert.Equal(t, 15*time.Second, c.LeaderboardRefresh)
}

func TestValidate(t *testing.T) {
	c := Config{StorageMode: "sqlite"}
	assert.Error(t, c.Validate())

	c = Config{StorageMode: StorageMemory, Env: "production"}
	assert.Error(t, c.Validate())

	c.JWTSecret = "s"
	assert.NoError(t, c.Validate())
}

func TestClientFromEnv(t *testing.T) {
	t.Setenv("BALLOT_SERVER", "https://ballot.example")
	t.Setenv("BALLOT_TOKEN", "tok")
	t.Setenv("BALLOT_DB", "/tmp/draft.db")
	c := ClientFromEnv()
	assert.Equal(t, Client{Server: "https://ballot.example", Token: "tok", DBPath: "/tmp/draft.db"}, c)
}
