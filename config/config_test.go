package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	log, _ := test.NewNullLogger()

	cfg, err := Load(log)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "inr", cfg.Currency)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "oracle")
	log, _ := test.NewNullLogger()

	_, err := Load(log)
	assert.Error(t, err)
}

func TestLoad_WarnsOnMissingSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "")
	t.Setenv("WEBHOOK_ENDPOINT_SECRET", "")
	log, hook := test.NewNullLogger()

	_, err := Load(log)
	require.NoError(t, err)
	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	assert.Equal(t, logrus.InfoLevel, NewLogger("loud", false).GetLevel())
}

func TestOpenSQLite_Migrates(t *testing.T) {
	db, err := OpenSQLite("file:config_test?mode=memory&cache=shared")
	require.NoError(t, err)
	for _, table := range []string{"users", "restaurants", "menus", "orders", "order_status_histories"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
