package store_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"conferent-backend/config"
	"conferent-backend/internal/db"
	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens a private in-memory database for one test.
func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())

	gdb, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return store.NewGormStore(gdb)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC)
}

func TestGormStore_FindConflicting_SQL(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := store.NewGormStore(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(
		`JOIN rents ON rents.id = room_rents.rent_id WHERE room_rents.room_id = $1 AND rents.start_time < $2 AND rents.end_time > $3`)).
		WithArgs(7, Any{}, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "rent_id"}).AddRow(3, 7, 11))

	links, err := s.FindConflicting(context.Background(), 7, at(14, 0), at(16, 0))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int64(11), links[0].RentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteRent_SQL(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectNotFound   bool
	}{
		{
			name: "Deletes invites, then links, then the rent",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "rents"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_invites" WHERE room_rent_id IN (SELECT "id" FROM "room_rents" WHERE rent_id = $1)`)).
					WithArgs(5).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "room_rents" WHERE rent_id = $1`)).
					WithArgs(5).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "rents" WHERE "rents"."id" = $1`)).
					WithArgs(5).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Missing rent rolls back without deleting",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "rents"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			expectNotFound: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			s := store.NewGormStore(gdb)
			tc.mockExpectations(mock)

			err := s.DeleteRent(context.Background(), 5)
			if tc.expectNotFound {
				assert.ErrorIs(t, err, store.ErrNotFound)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

type fixture struct {
	alice, bob *model.User
	roomA      *model.Room
	roomB      *model.Room
}

func seed(t *testing.T, s store.Store) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		alice: &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Role: model.RoleUser},
		bob:   &model.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: model.RoleAdmin},
		roomA: &model.Room{Name: "Room A", Location: "1F", Capacity: 6},
		roomB: &model.Room{Name: "Room B", Location: "2F", Capacity: 12},
	}
	require.NoError(t, s.CreateUser(ctx, f.alice))
	require.NoError(t, s.CreateUser(ctx, f.bob))
	require.NoError(t, s.CreateRoom(ctx, f.roomA))
	require.NoError(t, s.CreateRoom(ctx, f.roomB))
	return f
}

// book stores a rent with one link per room and one pending invite per
// (invitee, room).
func book(t *testing.T, s store.Store, creator int64, start, end time.Time, rooms []int64, invitees ...int64) *model.Rent {
	t.Helper()
	ctx := context.Background()
	rent := &model.Rent{StartTime: start, EndTime: end, Purpose: "sync", CreatorID: creator}
	require.NoError(t, s.CreateRent(ctx, rent))
	for _, roomID := range rooms {
		link := &model.RoomRent{RoomID: roomID, RentID: rent.ID}
		require.NoError(t, s.CreateRoomRent(ctx, link))
		for _, userID := range invitees {
			require.NoError(t, s.CreateInvite(ctx, &model.UserInvite{
				UserID: userID, RoomRentID: link.ID, Status: model.InviteStatusPending, InvitedAt: start,
			}))
		}
	}
	return rent
}

func TestGormStore_DuplicateNames(t *testing.T) {
	s := newSQLiteStore(t)
	seed(t, s)
	ctx := context.Background()

	err := s.CreateRoom(ctx, &model.Room{Name: "Room A", Capacity: 2})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.CreateUser(ctx, &model.User{Name: "A2", Email: "alice@example.com", PasswordHash: "x", Role: model.RoleUser})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGormStore_GetMissing(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	_, err := s.GetRoom(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var nf *store.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "room", nf.Entity)

	_, err = s.GetRent(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGormStore_FindConflicting(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	book(t, s, f.alice.ID, at(14, 0), at(16, 0), []int64{f.roomA.ID})

	overlapping, err := s.FindConflicting(ctx, f.roomA.ID, at(15, 0), at(17, 0))
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	touching, err := s.FindConflicting(ctx, f.roomA.ID, at(16, 0), at(17, 0))
	require.NoError(t, err)
	assert.Empty(t, touching)

	otherRoom, err := s.FindConflicting(ctx, f.roomB.ID, at(15, 0), at(17, 0))
	require.NoError(t, err)
	assert.Empty(t, otherRoom)
}

func TestGormStore_ListAvailableRooms(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	book(t, s, f.alice.ID, at(9, 0), at(10, 0), []int64{f.roomA.ID})

	rooms, err := s.ListAvailableRooms(ctx, at(9, 30), at(11, 0))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.roomB.ID, rooms[0].ID)

	rooms, err = s.ListAvailableRooms(ctx, at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestGormStore_ListRentsByDateRange(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	late := book(t, s, f.alice.ID, at(13, 0), at(14, 0), []int64{f.roomA.ID})
	early := book(t, s, f.alice.ID, at(9, 0), at(10, 0), []int64{f.roomB.ID})
	book(t, s, f.alice.ID, at(17, 0), at(19, 0), []int64{f.roomA.ID})

	rents, err := s.ListRentsByDateRange(ctx, at(8, 0), at(18, 0))
	require.NoError(t, err)
	require.Len(t, rents, 2)
	assert.Equal(t, early.ID, rents[0].ID)
	assert.Equal(t, late.ID, rents[1].ID)
}

func TestGormStore_DeleteRentCascades(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	rent := book(t, s, f.alice.ID, at(14, 0), at(16, 0), []int64{f.roomA.ID, f.roomB.ID}, f.bob.ID)

	invites, err := s.ListInvitesForRent(ctx, rent.ID)
	require.NoError(t, err)
	require.Len(t, invites, 2)
	assert.Equal(t, "Bob", invites[0].User.Name)
	assert.NotEmpty(t, invites[0].RoomRent.Room.Name)

	require.NoError(t, s.DeleteRent(ctx, rent.ID))

	links, err := s.ListRoomRentsByRent(ctx, rent.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	remaining, err := s.ListInvitesByUser(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, s.DeleteRent(ctx, rent.ID), store.ErrNotFound)
}

func TestGormStore_DeleteUserRemovesOwnedRents(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	owned := book(t, s, f.bob.ID, at(9, 0), at(10, 0), []int64{f.roomA.ID}, f.alice.ID)
	invitedTo := book(t, s, f.alice.ID, at(11, 0), at(12, 0), []int64{f.roomB.ID}, f.bob.ID)

	require.NoError(t, s.DeleteUser(ctx, f.bob.ID))

	exists, err := s.ExistsRent(ctx, owned.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.ExistsRent(ctx, invitedTo.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	invites, err := s.ListInvitesForRent(ctx, invitedTo.ID)
	require.NoError(t, err)
	assert.Empty(t, invites)
	pending, err := s.CountPendingInvitesByUser(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestGormStore_InviteCounts(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	rent := book(t, s, f.alice.ID, at(14, 0), at(16, 0), []int64{f.roomA.ID, f.roomB.ID}, f.bob.ID)

	pending, err := s.CountPendingInvitesByUser(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	invites, err := s.ListInvitesByUser(ctx, f.bob.ID)
	require.NoError(t, err)
	responded := at(12, 0)
	invites[0].Status = model.InviteStatusAccepted
	invites[0].RespondedAt = &responded
	require.NoError(t, s.SaveInvite(ctx, &invites[0]))

	accepted, err := s.CountAcceptedInvitesForRent(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), accepted)

	stillPending, err := s.ListInvitesByUserAndStatus(ctx, f.bob.ID, model.InviteStatusPending)
	require.NoError(t, err)
	assert.Len(t, stillPending, 1)
}

func TestGormStore_RoomRentPairIsUnique(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	rent := book(t, s, f.alice.ID, at(14, 0), at(16, 0), []int64{f.roomA.ID})

	err := s.CreateRoomRent(ctx, &model.RoomRent{RoomID: f.roomA.ID, RentID: rent.ID})
	assert.Error(t, err)
}

func TestGormStore_SubscriptionUpsert(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", UserID: f.alice.ID, P256DH: "k1", Auth: "a1"}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	moved := &model.PushSubscription{Endpoint: "https://push.example/1", UserID: f.bob.ID, P256DH: "k2", Auth: "a2"}
	require.NoError(t, s.SaveSubscription(ctx, moved))

	got, err := s.GetSubscription(ctx, "https://push.example/1")
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, got.UserID)
	assert.Equal(t, "k2", got.P256DH)

	aliceSubs, err := s.ListSubscriptionsByUser(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceSubs)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/1"))
	_, err = s.GetSubscription(ctx, "https://push.example/1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGormStore_WithTxRollsBack(t *testing.T) {
	s := newSQLiteStore(t)
	f := seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateRent(ctx, &model.Rent{StartTime: at(8, 0), EndTime: at(9, 0), CreatorID: f.alice.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rents, err := s.ListRents(ctx)
	require.NoError(t, err)
	assert.Empty(t, rents)
}
