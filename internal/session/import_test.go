package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportStatementRefreshesHistory(t *testing.T) {
	fake := seededBackend()
	sess := newTestSession(t, fake, 0)

	result, err := sess.ImportStatement([]byte("Date,Description,Amount\n"), "march.csv", "alice")
	require.NoError(t, err)
	require.NotNil(t, result)

	history := sess.History()
	require.Len(t, history, 1)
	assert.Equal(t, result.BatchID, history[0].ID)
	assert.Equal(t, "march.csv", history[0].Filename)
	assert.Equal(t, "alice", history[0].ImportedBy)
}

func TestDeleteImportBatchRefreshesHistory(t *testing.T) {
	fake := seededBackend()
	sess := newTestSession(t, fake, 0)

	first, err := sess.ImportStatement([]byte("x"), "march.csv", "alice")
	require.NoError(t, err)
	second, err := sess.ImportStatement([]byte("y"), "april.csv", "alice")
	require.NoError(t, err)

	require.NoError(t, sess.DeleteImportBatch(first.BatchID))

	history := sess.History()
	require.Len(t, history, 1)
	assert.Equal(t, second.BatchID, history[0].ID)
}
