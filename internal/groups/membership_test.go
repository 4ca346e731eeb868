package groups

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymatch/backend/internal/apperr"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

type recordingScheduler struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recordingScheduler) Schedule(groupID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, groupID)
}

func (r *recordingScheduler) scheduled() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}

func newMembershipFixture() (*stubGroupStore, *recordingScheduler, *Membership) {
	store := newStubGroupStore()
	store.addGroup(models.StudyGroup{ID: 1, CourseID: 10, Name: "Open", MaxSize: 3, Visibility: models.VisibilityPublic}, 200)
	store.addGroup(models.StudyGroup{ID: 2, CourseID: 10, Name: "Closed", Visibility: models.VisibilityPrivate})
	store.addGroup(models.StudyGroup{ID: 3, CourseID: 10, Name: "Packed", MaxSize: 1, Visibility: models.VisibilityPublic}, 201)
	store.addGroup(models.StudyGroup{ID: 4, CourseID: 20, Name: "Other course", Visibility: models.VisibilityPublic})
	store.enroll(100, 10)

	sched := &recordingScheduler{}
	return store, sched, NewMembership(store, sched, logger.NewNop())
}

func TestJoinable(t *testing.T) {
	cases := []struct {
		name  string
		group models.StudyGroup
		want  bool
	}{
		{"public with room", models.StudyGroup{Visibility: models.VisibilityPublic, MaxSize: 5, MemberCount: 4}, true},
		{"public unlimited", models.StudyGroup{Visibility: models.VisibilityPublic, MemberCount: 50}, true},
		{"public full", models.StudyGroup{Visibility: models.VisibilityPublic, MaxSize: 5, MemberCount: 5}, false},
		{"private", models.StudyGroup{Visibility: models.VisibilityPrivate, MaxSize: 5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Joinable(tc.group))
		})
	}
}

func TestJoinSchedulesRecompute(t *testing.T) {
	store, sched, m := newMembershipFixture()

	resp, err := m.Join(100, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.MembershipResponse{GroupID: 1, Member: true}, resp)
	assert.ElementsMatch(t, []int64{200, 100}, store.members[1])
	assert.Equal(t, []int64{1}, sched.scheduled())
}

func TestJoinTwiceIsNoop(t *testing.T) {
	_, sched, m := newMembershipFixture()

	_, err := m.Join(100, 1)
	require.NoError(t, err)
	resp, err := m.Join(100, 1)
	require.NoError(t, err)
	assert.True(t, resp.Member)
	assert.Equal(t, []int64{1}, sched.scheduled())
}

func TestJoinRejections(t *testing.T) {
	cases := []struct {
		name    string
		groupID int64
		code    apperr.Code
	}{
		{"unknown group", 99, apperr.CodeNotFound},
		{"not enrolled", 4, apperr.CodeForbidden},
		{"private", 2, apperr.CodeForbidden},
		{"full", 3, apperr.CodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, sched, m := newMembershipFixture()
			_, err := m.Join(100, tc.groupID)
			assert.True(t, apperr.Is(err, tc.code), "got %v", err)
			assert.Empty(t, sched.scheduled())
		})
	}
}

// staleGroupStore reports the group as empty, like a read taken just before
// other joins landed.
type staleGroupStore struct {
	*stubGroupStore
}

func (s staleGroupStore) GetGroup(groupID int64) (*models.StudyGroup, error) {
	g, err := s.stubGroupStore.GetGroup(groupID)
	if g != nil {
		g.MemberCount = 0
	}
	return g, err
}

func TestJoinFullAtInsertIsConflict(t *testing.T) {
	store, sched, _ := newMembershipFixture()
	m := NewMembership(staleGroupStore{store}, sched, logger.NewNop())

	_, err := m.Join(100, 3)
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
	assert.Equal(t, []int64{201}, store.members[3])
	assert.Empty(t, sched.scheduled())
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	store, sched, m := newMembershipFixture()
	for u := int64(300); u < 310; u++ {
		store.enroll(u, 10)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	joined, conflicts := 0, 0
	for u := int64(300); u < 310; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := m.Join(userID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case apperr.Is(err, apperr.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	// Group 1 holds three and starts with one member.
	assert.Equal(t, 2, joined)
	assert.Equal(t, 8, conflicts)
	g, err := store.GetGroup(1)
	require.NoError(t, err)
	assert.Equal(t, 3, g.MemberCount)
	assert.Len(t, sched.scheduled(), 2)
}

func TestLeave(t *testing.T) {
	store, sched, m := newMembershipFixture()

	resp, err := m.Leave(200, 1)
	require.NoError(t, err)
	assert.False(t, resp.Member)
	assert.Empty(t, store.members[1])
	assert.Equal(t, []int64{1}, sched.scheduled())

	_, err = m.Leave(200, 1)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, []int64{1}, sched.scheduled())
}

func TestMembershipWithoutScheduler(t *testing.T) {
	store, _, _ := newMembershipFixture()
	m := NewMembership(store, nil, logger.NewNop())
	_, err := m.Join(100, 1)
	assert.NoError(t, err)
}

func TestHandlerJoinAndLeave(t *testing.T) {
	_, _, m := newMembershipFixture()
	h := NewHandler(m)

	call := func(fn http.HandlerFunc, userID int64, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/"+id+"/join", nil)
		if userID != 0 {
			ctx := requestdata.WithRequestData(req.Context(), &requestdata.RequestData{UserID: userID})
			req = req.WithContext(ctx)
		}
		req = mux.SetURLVars(req, map[string]string{"id": id})
		rr := httptest.NewRecorder()
		fn(rr, req)
		return rr
	}

	rr := call(h.Join, 100, "1")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.MembershipResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.MembershipResponse{GroupID: 1, Member: true}, resp)

	assert.Equal(t, http.StatusConflict, call(h.Join, 100, "3").Code)
	assert.Equal(t, http.StatusForbidden, call(h.Join, 100, "2").Code)
	assert.Equal(t, http.StatusNotFound, call(h.Join, 100, "99").Code)
	assert.Equal(t, http.StatusBadRequest, call(h.Join, 100, "abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h.Join, 0, "1").Code)

	assert.Equal(t, http.StatusOK, call(h.Leave, 100, "1").Code)
	assert.Equal(t, http.StatusNotFound, call(h.Leave, 100, "1").Code)
}
