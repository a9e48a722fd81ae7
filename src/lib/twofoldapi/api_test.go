package twofoldapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_GetHash(t *testing.T) {
	a := &Sequence{Uuid: uuid.New(), Nums: []int{1, 2, 3}}
	b := &Sequence{Uuid: uuid.New(), Nums: []int{1, 2, 3}}
	c := &Sequence{Nums: []int{1, 2, 3, 0}}
	empty := &Sequence{}

	assert.Len(t, a.GetHash(), 64)
	assert.Equal(t, a.GetHash(), b.GetHash(), "uuid must not affect the digest")
	assert.NotEqual(t, a.GetHash(), c.GetHash())
	assert.NotEqual(t, a.GetHash(), empty.GetHash())
}

func TestSequence_Verify(t *testing.T) {
	s := &Sequence{Nums: []int{4, -4}}
	assert.True(t, s.Verify(), "unsealed sequences pass")

	s.Seal()
	assert.True(t, s.Verify())

	s.Nums[1] = 4
	assert.False(t, s.Verify())
}

// fakeServer answers the way the real server does, but lets a test bend the reply.
func fakeServer(t *testing.T, bend func(*Sequence)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/concatenate":
			assert.Equal(t, http.MethodPut, r.Method)
			in := Sequence{}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			out := Sequence{Uuid: in.Uuid, Nums: append(append([]int{}, in.Nums...), in.Nums...)}
			out.Seal()
			if bend != nil {
				bend(&out)
			}
			_ = json.NewEncoder(w).Encode(out)
		case "/api/statistics":
			_ = json.NewEncoder(w).Encode(Statistics{Requests: 3, Elements: 12})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestPutConcatenate(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	in := &Sequence{Nums: []int{1, 2, 3}}
	got, err := PutConcatenate(in, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, in.Uuid, "caller's sequence must be left alone")
	assert.NotEqual(t, uuid.Nil, got.Uuid)
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, got.Nums)
	assert.Equal(t, []int{1, 2, 3}, in.Nums)
}

func TestPutConcatenate_KeepsCallerUuid(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	id := uuid.New()
	in := &Sequence{Uuid: id, Nums: []int{8}}
	got, err := PutConcatenate(in, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, id, in.Uuid)
	assert.Equal(t, id, got.Uuid)
	assert.Empty(t, in.Digest)
}

func TestPutConcatenate_Empty(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	got, err := PutConcatenate(&Sequence{Nums: []int{}}, srv.URL)
	require.NoError(t, err)
	assert.Empty(t, got.Nums)
}

func TestPutConcatenate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		bend func(*Sequence)
	}{
		{
			name: "tampered",
			bend: func(s *Sequence) { s.Nums[0] = 42 },
		},
		{
			name: "unsealed",
			bend: func(s *Sequence) { s.Digest = nil },
		},
		{
			name: "short",
			bend: func(s *Sequence) {
				s.Nums = s.Nums[:1]
				s.Seal()
			},
		},
		{
			name: "wrong request",
			bend: func(s *Sequence) { s.Uuid = uuid.New() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeServer(t, tt.bend)
			defer srv.Close()

			_, err := PutConcatenate(&Sequence{Nums: []int{1, 2}}, srv.URL)
			assert.Error(t, err)
		})
	}
}

func TestPutConcatenate_StatusCodes(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotAcceptable, http.StatusRequestEntityTooLarge, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		_, err := PutConcatenate(&Sequence{Nums: []int{1}}, srv.URL)
		assert.Error(t, err, "status %d", code)
		srv.Close()
	}
}

func TestGetStatistics(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	got, err := GetStatistics(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, &Statistics{Requests: 3, Elements: 12}, got)
}
