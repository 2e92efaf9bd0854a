package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupTagsService(t *testing.T) {
	entry := Setup("hub")
	assert.Equal(t, "hub", entry.Data["service"])
	assert.Equal(t, logrus.InfoLevel, entry.Logger.GetLevel())
}

func TestSetupHonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, logrus.DebugLevel, Setup("hub").Logger.GetLevel())
}

func TestSetupIgnoresBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")
	assert.Equal(t, logrus.InfoLevel, Setup("hub").Logger.GetLevel())
}
