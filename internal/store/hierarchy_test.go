package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

var nodeCols = []string{"id", "parent_id", "name", "kind", "account_id", "created_at"}

func TestListNodes(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM hierarchy_nodes ORDER BY id").WillReturnRows(sqlmock.NewRows(nodeCols).
		AddRow(1, nil, "Root", "provider", nil, now).
		AddRow(2, 1, "Reseller", "subprovider", "acct-1", now))

	nodes, err := NewHierarchyStore(db).ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Nil(t, nodes[0].ParentID)
	require.NotNil(t, nodes[1].ParentID)
	assert.Equal(t, int64(1), *nodes[1].ParentID)
	assert.Equal(t, models.KindSubprovider, nodes[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM hierarchy_nodes WHERE id = \?`).WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(nodeCols))

	_, err := NewHierarchyStore(db).GetNode(context.Background(), 5)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCreateNode(t *testing.T) {
	parent := int64(1)

	t.Run("inserted", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO hierarchy_nodes").
			WithArgs(parent, "Partner A", "partner", nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(9, 1))

		n := &models.HierarchyNode{ParentID: &parent, Name: "Partner A", Kind: models.KindPartner}
		require.NoError(t, NewHierarchyStore(db).CreateNode(context.Background(), n))
		assert.Equal(t, int64(9), n.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("parent missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO hierarchy_nodes").WillReturnError(&mysql.MySQLError{Number: 1452})

		n := &models.HierarchyNode{ParentID: &parent, Name: "Orphan", Kind: models.KindAccount}
		err := NewHierarchyStore(db).CreateNode(context.Background(), n)
		assert.ErrorIs(t, err, utils.ErrValidation)
	})
}
