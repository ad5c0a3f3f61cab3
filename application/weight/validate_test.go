package weight

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"weighthub/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateWeightRequestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   CreateWeightRequest
		field string
	}{
		{"valid local", CreateWeightRequest{Name: "w1", LocalPath: "/m/w1.bin", Enable: 1}, ""},
		{"valid online", CreateWeightRequest{Name: "w1", OnlineURL: "https://x/w1.bin"}, ""},
		{"missing name", CreateWeightRequest{LocalPath: "/m/w1.bin", Enable: 1}, "name"},
		{"name too long", CreateWeightRequest{Name: strings.Repeat("n", 256), LocalPath: "/m"}, "name"},
		{"no location", CreateWeightRequest{Name: "w1", Enable: 1}, "localPath"},
		{"bad url", CreateWeightRequest{Name: "w1", OnlineURL: "not a url"}, "onlineUrl"},
		{"bad enable", CreateWeightRequest{Name: "w1", LocalPath: "/m", Enable: 2}, "enable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
			assert.Equal(t, tt.field, shared.FieldOf(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestUpdateWeightRequestValidate(t *testing.T) {
	req := UpdateWeightRequest{ID: 5, Name: "w1", LocalPath: "/m/w1.bin", OnlineURL: "https://x/w1.bin", Enable: 1}
	assert.NoError(t, req.Validate())

	req.ID = 0
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "id", shared.FieldOf(err))
}

func TestUpdateWeightRequestRoundTrip(t *testing.T) {
	raw := `{"id":5,"name":"w1","localPath":"/m/w1.bin","onlineUrl":"https://x/w1.bin","enable":1}`

	var req UpdateWeightRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, UpdateWeightRequest{ID: 5, Name: "w1", LocalPath: "/m/w1.bin", OnlineURL: "https://x/w1.bin", Enable: 1}, req)

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestWeightRecordRoundTrip(t *testing.T) {
	rec := WeightRecord{ID: 7, Name: "sam", LocalPath: "/m/sam.onnx", OnlineURL: "https://x/sam.onnx", Enable: 0}
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"sam","localPath":"/m/sam.onnx","onlineUrl":"https://x/sam.onnx","enable":0}`, string(out))

	var back WeightRecord
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, rec, back)
	assert.NoError(t, back.Validate())
}

func TestListWeightRequestValidate(t *testing.T) {
	assert.NoError(t, (&ListWeightRequest{CurrentPage: 1, Size: 20}).Validate())
	assert.NoError(t, (&ListWeightRequest{CurrentPage: 1, Size: 20, Weight: strPtr("a"), Enable: intPtr(1)}).Validate())
	assert.NoError(t, (&ListWeightRequest{CurrentPage: 1, Size: 20, Enable: intPtr(0)}).Validate())

	err := (&ListWeightRequest{CurrentPage: 0, Size: 20}).Validate()
	assert.Equal(t, "currentPage", shared.FieldOf(err))

	err = (&ListWeightRequest{CurrentPage: 1, Size: 0}).Validate()
	assert.Equal(t, "size", shared.FieldOf(err))

	err = (&ListWeightRequest{CurrentPage: 1, Size: 20, Enable: intPtr(3)}).Validate()
	assert.Equal(t, "enable", shared.FieldOf(err))

	req := &ListWeightRequest{CurrentPage: 1, Size: 500}
	assert.NoError(t, req.ValidateSize(0))
	err = req.ValidateSize(100)
	assert.Equal(t, "size", shared.FieldOf(err))
}

func TestListWeightRequestOptionalFiltersStayAbsent(t *testing.T) {
	var req ListWeightRequest
	require.NoError(t, json.Unmarshal([]byte(`{"currentPage":1,"size":20}`), &req))
	assert.Nil(t, req.Weight)
	assert.Nil(t, req.Enable)

	require.NoError(t, json.Unmarshal([]byte(`{"currentPage":1,"size":20,"enable":0}`), &req))
	require.NotNil(t, req.Enable)
	assert.Equal(t, 0, *req.Enable)
}

func TestListWeightResultValidate(t *testing.T) {
	ok := ListWeightResult{List: []WeightRecord{{ID: 1, Name: "a", Enable: 1}}, Total: 3}
	assert.NoError(t, ok.Validate())

	short := ListWeightResult{List: []WeightRecord{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, Total: 1}
	assert.Equal(t, "total", shared.FieldOf(short.Validate()))

	badRecord := ListWeightResult{List: []WeightRecord{{ID: 0, Name: "a"}}, Total: 1}
	assert.Equal(t, "id", shared.FieldOf(badRecord.Validate()))

	out, err := json.Marshal(ListWeightResult{List: []WeightRecord{}, Total: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[],"total":0}`, string(out))
}
