package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newGormLogger(zap.New(core))
	sql := func() (string, int64) { return "SELECT 1", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "query failed", entries[0].Message)
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	}

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	entries = logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "slow query", entries[0].Message)
	}

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Zero(t, logs.Len())

	l.LogMode(logger.Info).Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("query").Len())
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newGormLogger(zap.New(core)).LogMode(logger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	l.Warn(context.Background(), "warn %d", 1)
	assert.Zero(t, logs.Len())
}
