package training

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duhsoft/aigateway/internal/queue"
)

type fakeDB struct {
	queryRow func(sql string, args []any) pgx.Row
	execSQL  []string
	execArgs [][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return f.queryRow(sql, args)
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// insertDB answers the INSERT ... RETURNING of ingestOne by echoing the
// inserted values back.
func insertDB(docID, assistantID uuid.UUID) *fakeDB {
	return &fakeDB{queryRow: func(_ string, args []any) pgx.Row {
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*uuid.UUID)) = docID
			*(dest[1].(*uuid.UUID)) = assistantID
			*(dest[2].(*string)) = args[2].(string)
			*(dest[3].(*string)) = args[3].(string)
			*(dest[4].(*int64)) = args[4].(int64)
			*(dest[5].(*string)) = args[5].(string)
			*(dest[6].(*string)) = args[6].(string)
			*(dest[7].(*json.RawMessage)) = json.RawMessage(`{}`)
			*(dest[9].(*time.Time)) = time.Now()
			return nil
		}}
	}}
}

func statsDB(total, processed int) *fakeDB {
	return &fakeDB{queryRow: func(string, []any) pgx.Row {
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*int)) = total
			*(dest[1].(*int)) = processed
			return nil
		}}
	}}
}

type fakeFileStore struct {
	saved   []string
	deleted []string
}

func (f *fakeFileStore) Save(_ context.Context, path string, _ io.Reader) (string, error) {
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFileStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFileStore) Delete(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeEnqueuer struct {
	payloads []queue.DocumentProcessPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueDocumentProcess(p queue.DocumentProcessPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type countingVectorStore struct {
	fakeVectorStore
	count int
}

func (c *countingVectorStore) CountByAssistant(context.Context, uuid.UUID) (int, error) {
	return c.count, nil
}

func TestIngestEnqueuesProcessing(t *testing.T) {
	docID, assistantID := uuid.New(), uuid.New()
	db := insertDB(docID, assistantID)
	q := &fakeEnqueuer{}
	svc := NewService(db, &fakeFileStore{}, &fakeVectorStore{}, q, nil)

	docs := svc.Ingest(context.Background(), assistantID, []Upload{
		{Filename: "notes.txt", ContentType: "text/plain", Size: 5, Data: strings.NewReader("hello")},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, docID, docs[0].ID)
	assert.Equal(t, "uploaded", docs[0].Status)
	require.Len(t, q.payloads, 1)
	assert.Equal(t, docID.String(), q.payloads[0].DocumentID)
	assert.Empty(t, db.execSQL)
}

func TestIngestRollsBackWhenEnqueueFails(t *testing.T) {
	docID, assistantID := uuid.New(), uuid.New()
	db := insertDB(docID, assistantID)
	store := &fakeFileStore{}
	svc := NewService(db, store, &fakeVectorStore{}, &fakeEnqueuer{err: errors.New("redis down")}, nil)

	docs := svc.Ingest(context.Background(), assistantID, []Upload{
		{Filename: "notes.txt", ContentType: "text/plain", Size: 5, Data: strings.NewReader("hello")},
	})

	assert.Empty(t, docs)
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "DELETE FROM training_documents")
	assert.Equal(t, docID, db.execArgs[0][0])
	assert.Equal(t, []string{"training/notes.txt"}, store.deleted)
}

func TestStatsProcessingStatus(t *testing.T) {
	tests := []struct {
		name             string
		total, processed int
		want             string
	}{
		{"all processed", 3, 3, "complete"},
		{"no documents", 0, 0, "complete"},
		{"failed document keeps status active", 3, 2, "active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(statsDB(tt.total, tt.processed), &fakeFileStore{}, &fakeVectorStore{}, &fakeEnqueuer{}, nil)

			stats, err := svc.Stats(context.Background(), uuid.New())

			require.NoError(t, err)
			assert.Equal(t, tt.want, stats.ProcessingStatus)
		})
	}
}

func TestStatsCounts(t *testing.T) {
	svc := NewService(statsDB(3, 2), &fakeFileStore{}, &countingVectorStore{count: 12}, &fakeEnqueuer{}, nil)

	stats, err := svc.Stats(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 2, stats.ProcessedDocuments)
	assert.Equal(t, 12, stats.TotalChunks)
}
