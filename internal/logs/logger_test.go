package logs

import (
	"bytes"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("LevelFiltering", func(t *testing.T) {
		logger := NewLogger(10, INFO)
		// Minimum level is INFO
		logger.Tracef("should not be logged")
		logger.Debug("should not be logged")
		logger.Info("should be logged")
		logger.Warnf("should be logged")
		logger.Error("should be logged")

		entries := logger.GetLast(10)
		assert.Len(t, entries, 3, "Logger should have ignored TRACE and DEBUG but kept INFO, WARN, and ERROR")
		assert.Equal(t, INFO, entries[0].Level)
		assert.Equal(t, WARN, entries[1].Level)
		assert.Equal(t, ERROR, entries[2].Level)
	})

	t.Run("TraceEnabled", func(t *testing.T) {
		logger := NewLogger(10, TRACE)
		logger.Tracef("STARTED nodeDataChanged count:%d", 3)

		entries := logger.GetLast(1)
		require.Len(t, entries, 1)
		assert.Equal(t, TRACE, entries[0].Level)
		assert.Equal(t, "STARTED nodeDataChanged count:3", entries[0].Message)
	})

	t.Run("RingBufferBehavior", func(t *testing.T) {
		// max size is 2 so adding a 3rd entry shall push out the first entry (FIFO)
		logger := NewLogger(2, DEBUG)

		logger.Info("first")
		logger.Info("second")
		logger.Info("third")

		entries := logger.GetLast(10)
		assert.Len(t, entries, 2, "Logger should only keep maxSize entries")
		assert.Equal(t, "second", entries[0].Message)
		assert.Equal(t, "third", entries[1].Message)
	})

	t.Run("ConcurrentLogging", func(t *testing.T) {
		//50 different goroutines logging simultaneously
		logger := NewLogger(100, DEBUG)
		var wg sync.WaitGroup
		numLogs := 50

		for i := 0; i < numLogs; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				logger.Infof("concurrent log %d", i)
			}(i)
		}
		wg.Wait()

		entries := logger.GetLast(100)
		assert.Len(t, entries, numLogs, "Logger should have all concurrent log entries")
	})

	t.Run("GetLastBoundaries", func(t *testing.T) {
		//3 logs in memory
		//test requesting more, equal, less than available and non-positive counts
		logger := NewLogger(10, DEBUG)
		logger.Info("msg1")
		logger.Info("msg2")
		logger.Info("msg3")

		assert.Len(t, logger.GetLast(10), 3)
		assert.Len(t, logger.GetLast(3), 3)

		lastTwo := logger.GetLast(2)
		assert.Len(t, lastTwo, 2)
		assert.Equal(t, "msg2", lastTwo[0].Message)
		assert.Equal(t, "msg3", lastTwo[1].Message)

		assert.Empty(t, logger.GetLast(0))
		assert.Empty(t, logger.GetLast(-1))
	})

	t.Run("DeepCopyProtection", func(t *testing.T) {
		logger := NewLogger(10, DEBUG)
		logger.Info("original message")

		entries := logger.GetLast(1)
		entries[0].Message = "modified message"

		entriesAfterModification := logger.GetLast(1)
		assert.Equal(t, "original message", entriesAfterModification[0].Message, "Modifying retrieved entries should not affect internal log storage")
	})

	t.Run("MirrorOutput", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(10, INFO)
		logger.SetOutput(&buf)

		logger.Debug("hidden")
		logger.Errorf("persist failed: %s", "disk full")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "ERR persist failed: disk full\n")
	})

	t.Run("ZeroCapacityStillMirrors", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(0, INFO)
		logger.SetOutput(&buf)

		logger.Info("only on the wire")

		assert.Empty(t, logger.GetLast(10))
		assert.Contains(t, buf.String(), "only on the wire")
	})

	t.Run("MirrorKeepsTraceEntries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(10, TRACE)
		logger.SetOutput(&buf)

		logger.Tracef("STARTED %s", "ApiCallModel.Refresh")

		assert.Contains(t, buf.String(), "TRC STARTED ApiCallModel.Refresh")
	})

	t.Run("MirrorOff", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(10, INFO)
		logger.SetOutput(&buf)
		logger.SetOutput(nil)

		logger.Info("kept in memory only")

		assert.Empty(t, buf.String())
		assert.Len(t, logger.GetLast(10), 1)
	})
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "DEBUG", " Info ", "warn", "error"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLevel(name)
			assert.NoError(t, err)
		})
	}

	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WARN, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
	_, err = ParseLevel(strconv.Itoa(3))
	assert.Error(t, err)
}

func TestLevelUnmarshalText(t *testing.T) {
	var level Level
	require.NoError(t, level.UnmarshalText([]byte("debug")))
	assert.Equal(t, DEBUG, level)

	assert.Error(t, level.UnmarshalText([]byte("loud")))
	assert.Equal(t, DEBUG, level, "a failed parse keeps the previous level")
}
