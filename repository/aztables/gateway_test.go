package aztables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

// memTable keeps raw entities per partition and row, the way the service returns them.
type memTable struct {
	mu      sync.Mutex
	rows    map[string][]byte
	batches []int
	fail    error
}

func newMemTable() *memTable {
	return &memTable{rows: map[string][]byte{}}
}

func rowID(partition, row string) string { return partition + "/" + row }

func (m *memTable) List(_ context.Context, partition string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out [][]byte
	for _, k := range keys {
		var e entityKeys
		if err := json.Unmarshal(m.rows[k], &e); err == nil && e.PartitionKey == partition {
			out = append(out, m.rows[k])
		}
	}
	return out, nil
}

func (m *memTable) Get(_ context.Context, partition, row string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[rowID(partition, row)], nil
}

func (m *memTable) Submit(_ context.Context, actions []aztables.TransactionAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if len(actions) > MaxBatch {
		return fmt.Errorf("batch of %d exceeds the service limit", len(actions))
	}
	m.batches = append(m.batches, len(actions))
	for _, a := range actions {
		if a.ActionType != aztables.TransactionTypeInsertReplace {
			return fmt.Errorf("unexpected action %s", a.ActionType)
		}
		var e entityKeys
		if err := json.Unmarshal(a.Entity, &e); err != nil {
			return err
		}
		m.rows[rowID(e.PartitionKey, e.RowKey)] = a.Entity
	}
	return nil
}

func (m *memTable) Delete(_ context.Context, partition, row string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, rowID(partition, row))
	return nil
}

func (m *memTable) Ping(context.Context) error { return m.fail }

func newMemGateway(t *testing.T) (*gateway, map[domain.Kind]*memTable) {
	t.Helper()
	mems := map[domain.Kind]*memTable{}
	tables := map[domain.Kind]Table{}
	for _, k := range domain.Kinds {
		mems[k] = newMemTable()
		tables[k] = mems[k]
	}
	gw, err := NewGateway(tables, "")
	require.NoError(t, err)
	return gw.(*gateway), mems
}

func TestNewGatewayRequiresEveryTable(t *testing.T) {
	_, err := NewGateway(map[domain.Kind]Table{domain.KindBoard: newMemTable()}, "p")
	assert.Error(t, err)
}

func TestGatewayRoundTrip(t *testing.T) {
	gw, _ := newMemGateway(t)
	ctx := context.Background()

	task := domain.Task{
		ID: "t1", Title: "Plan", BoardID: "b1", Order: 3,
		Status: domain.StatusWaiting, Priority: domain.PriorityLow, Tags: []string{"home", "q2"},
		DueDate: "2026-03-09T00:00:00.000Z", CreatedAt: "2026-03-01T08:15:30.250Z",
	}
	require.NoError(t, gw.PutMany(ctx, []domain.Record{
		domain.Board{ID: "b1", Title: "Now", CreatedAt: "2026-03-01T00:00:00.000Z"},
		task,
		domain.Task{ID: "t0", Title: "Old", BoardID: "b1", Archived: true, ArchivedAt: "2026-03-05T00:00:00.000Z"},
		domain.Session{ID: "s1", TaskID: "t1", StartedAt: "2026-03-01T09:00:00.000Z"},
		domain.Settings{DefaultView: domain.ViewCalendar},
	}))

	boards, err := gw.Boards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, domain.Timestamp("2026-03-01T00:00:00.000Z"), boards[0].CreatedAt)

	tasks, err := gw.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task, tasks[0])

	archived, err := gw.ArchivedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "t0", archived[0].ID)

	sessions, err := gw.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.SessionFocus, sessions[0].Kind)

	settings, err := gw.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewCalendar, settings.DefaultView)
	assert.Equal(t, domain.SettingsID, settings.ID)
}

func TestEntitiesCarryDateTimeAnnotations(t *testing.T) {
	gw, mems := newMemGateway(t)
	require.NoError(t, gw.Put(context.Background(), domain.Task{ID: "t1", Title: "x", BoardID: "b1", DueDate: "2026-03-09T00:00:00.000Z"}))

	raw := mems[domain.KindTask].rows[rowID(DefaultPartition, "t1")]
	var props map[string]any
	require.NoError(t, json.Unmarshal(raw, &props))
	assert.Equal(t, "2026-03-09T00:00:00.000Z", props["DueDate"])
	assert.Equal(t, "Edm.DateTime", props["DueDate@odata.type"])
	assert.NotContains(t, props, "CompletedAt")
	assert.NotContains(t, props, "CompletedAt@odata.type")
	assert.Equal(t, DefaultPartition, props["PartitionKey"])
}

func TestServicePrecisionIsCanonicalized(t *testing.T) {
	gw, mems := newMemGateway(t)
	mems[domain.KindTask].rows[rowID(DefaultPartition, "t1")] = []byte(`{
		"PartitionKey": "taskboard", "RowKey": "t1", "Title": "x", "BoardId": "b1", "Order": 0,
		"Tags": "not json",
		"DueDate": "2026-03-09T00:00:00Z",
		"CreatedAt": "2026-03-01T08:15:30.2500000Z"
	}`)

	tasks, err := gw.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.Timestamp("2026-03-09T00:00:00.000Z"), tasks[0].DueDate)
	assert.Equal(t, domain.Timestamp("2026-03-01T08:15:30.250Z"), tasks[0].CreatedAt)
	assert.Equal(t, []string{}, tasks[0].Tags)
	assert.Equal(t, domain.StatusWorking, tasks[0].Status)
}

func TestPutManySplitsLargeTransactions(t *testing.T) {
	gw, mems := newMemGateway(t)
	records := make([]domain.Record, 0, 250)
	for i := 0; i < 250; i++ {
		records = append(records, domain.Task{ID: fmt.Sprintf("t%03d", i), Title: "x", BoardID: "b1", Order: i})
	}
	records = append(records, domain.Board{ID: "b1", Title: "b"})

	require.NoError(t, gw.PutMany(context.Background(), records))
	assert.Equal(t, []int{100, 100, 50}, mems[domain.KindTask].batches)
	assert.Equal(t, []int{1}, mems[domain.KindBoard].batches)
	assert.Empty(t, mems[domain.KindSession].batches)
}

func TestPutManyCollapsesDuplicateIDs(t *testing.T) {
	gw, mems := newMemGateway(t)
	require.NoError(t, gw.PutMany(context.Background(), []domain.Record{
		domain.Task{ID: "t1", Title: "first", BoardID: "b1"},
		domain.Task{ID: "t1", Title: "second", BoardID: "b1"},
	}))
	assert.Equal(t, []int{1}, mems[domain.KindTask].batches)

	tasks, err := gw.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "second", tasks[0].Title)
}

func TestPutManyReportsSubmitFailure(t *testing.T) {
	gw, mems := newMemGateway(t)
	mems[domain.KindTask].fail = errors.New("throttled")

	err := gw.PutMany(context.Background(), []domain.Record{domain.Task{ID: "t1", Title: "x", BoardID: "b1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit tasks")
	assert.ErrorIs(t, gw.Put(context.Background(), domain.Task{}), domain.ErrInvalidPayload)
}

func TestDeleteAndSettingsDefaults(t *testing.T) {
	gw, _ := newMemGateway(t)
	ctx := context.Background()

	s, err := gw.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)

	require.NoError(t, gw.Put(ctx, domain.Board{ID: "b1", Title: "x"}))
	require.NoError(t, gw.Delete(ctx, domain.Ref{Kind: domain.KindBoard, ID: "b1"}))
	boards, err := gw.Boards(ctx)
	require.NoError(t, err)
	assert.Empty(t, boards)

	assert.ErrorIs(t, gw.Delete(ctx, domain.Ref{Kind: "widget", ID: "x"}), domain.ErrInvalidPayload)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "taskboardBoards", TableName("taskboard", domain.KindBoard))
	assert.Equal(t, "appSettings", TableName("app", domain.KindSettings))
}
