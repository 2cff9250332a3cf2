package lists_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/hidapi/internal/app/features/lists"
	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memLists map[primitive.ObjectID]models.List

func (m memLists) GetByID(_ context.Context, id primitive.ObjectID) (models.List, error) {
	l, ok := m[id]
	if !ok {
		return models.List{}, mongo.ErrNoDocuments
	}
	return l, nil
}

func (m memLists) Upsert(_ context.Context, l models.List) (models.List, error) {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	m[l.ID] = l
	return l, nil
}

func (m memLists) Remove(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := m[id]; !ok {
		return 0, nil
	}
	delete(m, id)
	return 1, nil
}

func (m memLists) ListByOwner(_ context.Context, userID string) ([]models.List, error) {
	var out []models.List
	for _, l := range m {
		if l.Owner == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// memFollowers maps profile id to followed list ids.
type memFollowers map[primitive.ObjectID][]primitive.ObjectID

func (m memFollowers) AddList(_ context.Context, pid, lid primitive.ObjectID) error {
	for _, x := range m[pid] {
		if x == lid {
			return nil
		}
	}
	m[pid] = append(m[pid], lid)
	return nil
}

func (m memFollowers) RemoveList(_ context.Context, pid, lid primitive.ObjectID) error {
	out := m[pid][:0]
	for _, x := range m[pid] {
		if x != lid {
			out = append(out, x)
		}
	}
	m[pid] = out
	return nil
}

func (m memFollowers) UnlinkList(ctx context.Context, lid primitive.ObjectID) (int64, error) {
	var n int64
	for pid, ls := range m {
		for _, x := range ls {
			if x == lid {
				_ = m.RemoveList(ctx, pid, lid)
				n++
				break
			}
		}
	}
	return n, nil
}

func user(id string, verified bool, roles ...string) authz.Actor {
	return authz.UserActor(id, &models.Profile{ID: primitive.NewObjectID(), UserID: id, Roles: roles, Verified: verified, Status: true})
}

func newSaver() (*lists.Saver, memLists, memFollowers) {
	ls, fs := memLists{}, memFollowers{}
	return &lists.Saver{Lists: ls, Followers: fs, Log: zap.NewNop()}, ls, fs
}

func TestSave_CreateAndOwnerUpdate(t *testing.T) {
	s, _, _ := newSaver()
	owner := user("ana", false)

	res, err := s.Save(context.Background(), owner, "", decision.Changes{"name": "  Logistics  Haiti ", "readers": []any{"bo", "bo", " "}})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "ana", res.List.Owner)
	assert.Equal(t, "Logistics Haiti", res.List.Name)
	assert.Equal(t, models.ListPrivacyMe, res.List.Privacy)
	assert.Equal(t, []string{"bo"}, res.List.Readers)

	res, err = s.Save(context.Background(), owner, res.List.ID.Hex(), decision.Changes{"privacy": "all", "userid": "mallory"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, models.ListPrivacyAll, res.List.Privacy)
	assert.Equal(t, "ana", res.List.Owner)
}

func TestSave_EditorChangesContentsOnly(t *testing.T) {
	s, ls, _ := newSaver()
	l, _ := ls.Upsert(context.Background(), models.List{Name: "Shared", Owner: "ana", Privacy: models.ListPrivacySome, Editors: []string{"ed"}})
	contact := primitive.NewObjectID()

	res, err := s.Save(context.Background(), user("ed", false), l.ID.Hex(), decision.Changes{
		"users":   []any{contact.Hex()},
		"privacy": "all",
		"editors": []any{"ed", "friend"},
	})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{contact}, res.List.Users)
	assert.Equal(t, models.ListPrivacySome, res.List.Privacy)
	assert.Equal(t, []string{"ed"}, res.List.Editors)
	assert.ElementsMatch(t, []string{"privacy", "editors"}, res.Dropped)
}

func TestSave_Rejections(t *testing.T) {
	s, ls, _ := newSaver()
	l, _ := ls.Upsert(context.Background(), models.List{Name: "Mine", Owner: "ana", Privacy: models.ListPrivacyAll})

	tests := []struct {
		name  string
		actor authz.Actor
		id    string
		ch    decision.Changes
		want  error
	}{
		{"stranger", user("bo", true), l.ID.Hex(), decision.Changes{"name": "x"}, apperr.ErrForbidden},
		{"client create", authz.ClientActor("ops", true), "", decision.Changes{"name": "x"}, apperr.ErrBadRequest},
		{"missing name", user("ana", false), "", decision.Changes{}, apperr.ErrBadRequest},
		{"bad privacy", user("ana", false), l.ID.Hex(), decision.Changes{"privacy": "friends"}, apperr.ErrBadRequest},
		{"unknown list", user("ana", false), primitive.NewObjectID().Hex(), nil, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(context.Background(), tt.actor, tt.id, tt.ch)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDelete(t *testing.T) {
	s, ls, fs := newSaver()
	l, _ := ls.Upsert(context.Background(), models.List{Name: "Mine", Owner: "ana", Privacy: models.ListPrivacyAll, Editors: []string{"ed"}})
	follower := primitive.NewObjectID()
	fs[follower] = []primitive.ObjectID{l.ID}

	err := s.Delete(context.Background(), user("ed", false), l.ID.Hex())
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "editors cannot delete: %v", err)

	require.NoError(t, s.Delete(context.Background(), user("ana", false), l.ID.Hex()))
	assert.NotContains(t, ls, l.ID)
	assert.Empty(t, fs[follower])

	err = s.Delete(context.Background(), user("ana", false), l.ID.Hex())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestFollow_RespectsPrivacy(t *testing.T) {
	tests := []struct {
		privacy string
		actor   authz.Actor
		allowed bool
	}{
		{models.ListPrivacyAll, user("bo", false), true},
		{models.ListPrivacyVerified, user("bo", false), false},
		{models.ListPrivacyVerified, user("bo", true), true},
		{models.ListPrivacySome, user("reader", false), true},
		{models.ListPrivacySome, user("bo", true), false},
		{models.ListPrivacyMe, user("bo", true), false},
		{models.ListPrivacyMe, user("root", false, "admin"), true},
	}
	for _, tt := range tests {
		t.Run(tt.privacy+"/"+tt.actor.UserID, func(t *testing.T) {
			s, ls, fs := newSaver()
			l, _ := ls.Upsert(context.Background(), models.List{Name: "L", Owner: "ana", Privacy: tt.privacy, Readers: []string{"reader"}})

			err := s.Follow(context.Background(), tt.actor, l.ID.Hex())
			pid, _ := primitive.ObjectIDFromHex(tt.actor.Profile.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, []primitive.ObjectID{l.ID}, fs[pid])
			} else {
				assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)
				assert.Empty(t, fs[pid])
			}
		})
	}
}

func TestUnfollow(t *testing.T) {
	s, ls, fs := newSaver()
	l, _ := ls.Upsert(context.Background(), models.List{Name: "L", Owner: "ana", Privacy: models.ListPrivacyAll})
	bo := user("bo", false)
	require.NoError(t, s.Follow(context.Background(), bo, l.ID.Hex()))
	require.NoError(t, s.Unfollow(context.Background(), bo, l.ID.Hex()))

	pid, _ := primitive.ObjectIDFromHex(bo.Profile.ID)
	assert.Empty(t, fs[pid])

	err := s.Follow(context.Background(), authz.ClientActor("ops", true), l.ID.Hex())
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
}

func TestMine(t *testing.T) {
	s, ls, _ := newSaver()
	ctx := context.Background()
	_, _ = ls.Upsert(ctx, models.List{Name: "A", Owner: "ana"})
	_, _ = ls.Upsert(ctx, models.List{Name: "B", Owner: "bo"})

	got, err := s.Mine(ctx, user("ana", false))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)

	_, err = s.Mine(ctx, authz.ClientActor("ops", true))
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
}
