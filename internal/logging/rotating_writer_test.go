package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriterWrite(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	writer, err := NewRotatingWriter(logFile, 100, 3)
	require.NoError(t, err)
	defer writer.Close()

	data := []byte("This is a test log message\n")
	n, err := writer.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(content))
}

func TestRotatingWriterAppendsToExistingFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(logFile, []byte("old\n"), 0600))

	writer, err := NewRotatingWriter(logFile, 1024, 3)
	require.NoError(t, err)
	_, err = writer.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(content))
}

func TestRotatingWriterRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	writer, err := NewRotatingWriter(logFile, 50, 3)
	require.NoError(t, err)
	defer writer.Close()

	firstMsg := strings.Repeat("A", 30) + "\n"
	secondMsg := strings.Repeat("B", 30) + "\n"

	_, err = writer.Write([]byte(firstMsg))
	require.NoError(t, err)
	_, err = writer.Write([]byte(secondMsg))
	require.NoError(t, err)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, secondMsg, string(content))

	backup, err := os.ReadFile(filepath.Join(dir, "test.1.log"))
	require.NoError(t, err)
	assert.Equal(t, firstMsg, string(backup))
}

func TestRotatingWriterMaxBackups(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	writer, err := NewRotatingWriter(logFile, 20, 2)
	require.NoError(t, err)
	defer writer.Close()

	for i := range 5 {
		msg := fmt.Sprintf("Message %d: %s\n", i, strings.Repeat("X", 15))
		_, err := writer.Write([]byte(msg))
		require.NoError(t, err, "write %d", i)
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{"test.log", "test.1.log", "test.2.log"}, names)

	newest, err := os.ReadFile(filepath.Join(dir, "test.1.log"))
	require.NoError(t, err)
	assert.Contains(t, string(newest), "Message 3")

	oldest, err := os.ReadFile(filepath.Join(dir, "test.2.log"))
	require.NoError(t, err)
	assert.Contains(t, string(oldest), "Message 2")
}

func TestRotatingWriterBackupName(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewRotatingWriter(filepath.Join(dir, "app.log"), 1024, 3)
	require.NoError(t, err)
	defer writer.Close()

	assert.Equal(t, filepath.Join(dir, "app.1.log"), writer.backupName(1))
	assert.Equal(t, filepath.Join(dir, "app.3.log"), writer.backupName(3))
}

func TestRotatingWriterWriteAfterClose(t *testing.T) {
	writer, err := NewRotatingWriter(filepath.Join(t.TempDir(), "test.log"), 1024, 1)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	_, err = writer.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
