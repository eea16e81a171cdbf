package sink

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelforge/pkg/models"
)

func warehouseConfig() models.Warehouse {
	return models.Warehouse{
		Enabled:   true,
		Account:   "xy12345.us-east-1",
		Username:  "loader",
		Database:  "FUNNELFORGE",
		Schema:    "PUBLIC",
		Warehouse: "COMPUTE_WH",
		Role:      "SYSADMIN",
	}
}

func TestWarehouseFlushOnClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	w := newWarehouseWithDB(db, warehouseConfig())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS FUNNELFORGE\.PUBLIC\.EVENTS \(payload VARIANT\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO FUNNELFORGE\.PUBLIC\.EVENTS \(payload\) SELECT PARSE_JSON\(column1\) FROM VALUES`).
		WithArgs(`{"name":"a","count":1}`, `{"name":"b","count":2}`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectClose()

	require.NoError(t, w.Write(DatasetEvents, testRecord{Name: "a", Count: 1}))
	require.NoError(t, w.Write(DatasetEvents, testRecord{Name: "b", Count: 2}))
	require.NoError(t, w.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouseBatchesAtThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	w := newWarehouseWithDB(db, warehouseConfig())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS FUNNELFORGE\.PUBLIC\.LEADS`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO FUNNELFORGE\.PUBLIC\.LEADS`).
		WillReturnResult(sqlmock.NewResult(0, int64(warehouseBatchSize)))
	mock.ExpectClose()

	// One short of the batch size: nothing should hit the database yet.
	for i := 0; i < warehouseBatchSize-1; i++ {
		require.NoError(t, w.Write(DatasetLeads, testRecord{Name: fmt.Sprintf("r%d", i)}))
	}
	assert.Error(t, mock.ExpectationsWereMet(), "no statement should have run before the batch fills")

	// The final record triggers the flush.
	require.NoError(t, w.Write(DatasetLeads, testRecord{Name: "last"}))
	require.NoError(t, w.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouseCreatesTableOncePerDataset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	w := newWarehouseWithDB(db, warehouseConfig())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS FUNNELFORGE\.PUBLIC\.DEALS`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO FUNNELFORGE\.PUBLIC\.DEALS`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second flush for the same dataset skips the CREATE TABLE.
	mock.ExpectExec(`INSERT INTO FUNNELFORGE\.PUBLIC\.DEALS`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	require.NoError(t, w.Write(DatasetDeals, testRecord{Name: "a"}))
	require.NoError(t, w.flush(DatasetDeals))
	require.NoError(t, w.Write(DatasetDeals, testRecord{Name: "b"}))
	require.NoError(t, w.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouseMarshalFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	w := newWarehouseWithDB(db, warehouseConfig())
	assert.Error(t, w.Write(DatasetEvents, func() {}))
	require.NoError(t, w.Close())
}

func TestWarehouseTableName(t *testing.T) {
	w := newWarehouseWithDB(nil, warehouseConfig())
	assert.Equal(t, "FUNNELFORGE.PUBLIC.EVENTS", w.tableName(DatasetEvents))
}
