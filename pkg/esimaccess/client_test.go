package esimaccess

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(path string, body map[string]any) any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("RT-AccessCode"))
		assert.Equal(t, http.MethodPost, r.Method)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(r.URL.Path, body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", 0)
}

func TestClient_ListPlans(t *testing.T) {
	c := newTestServer(t, func(path string, _ map[string]any) any {
		assert.Equal(t, "/package/list", path)
		return map[string]any{
			"success": true,
			"obj": map[string]any{"packageList": []map[string]any{
				{"packageCode": "TR-3GB-30", "slug": "tr-3gb", "name": "Turkey 3GB", "price": 21000,
					"retailPrice": 42000, "volume": 3 << 30, "duration": 30, "location": "TR", "locationName": "Turkey", "dataType": 1},
				{"packageCode": "EU-UNL-7", "name": "Europe Unlimited", "price": 150000, "volume": 0,
					"duration": 7, "location": "DE,FR,IT", "dataType": 2},
			}},
		}
	})

	plans, err := c.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	tr := plans[0]
	assert.Equal(t, "TR-3GB-30", tr.ID)
	assert.Equal(t, "Turkey", tr.Destination)
	assert.Equal(t, 3.0, tr.DataGB)
	assert.Equal(t, "2.1", tr.ResellerPriceUSD.String())
	assert.Equal(t, "4.2", tr.OriginalPriceUSD.String())
	assert.Equal(t, "single", tr.LocationType)

	eu := plans[1]
	assert.Equal(t, "Europe Unlimited", eu.Destination)
	assert.True(t, eu.IsUnlimited())
	assert.Equal(t, "regional", eu.LocationType)
	assert.Equal(t, "daily", eu.DataType)
}

func TestClient_OrderAndQuery(t *testing.T) {
	c := newTestServer(t, func(path string, body map[string]any) any {
		switch path {
		case "/esim/order":
			assert.Equal(t, "ORD-20261016-000001", body["transactionId"])
			return map[string]any{"success": true, "obj": map[string]any{"orderNo": "B2610160001"}}
		case "/esim/query":
			assert.Equal(t, "B2610160001", body["orderNo"])
			return map[string]any{"success": true, "obj": map[string]any{"esimList": []map[string]any{
				{"iccid": "8999", "ac": "LPA:1$smdp$X", "esimStatus": "GOT_RESOURCE"},
			}}}
		}
		t.Errorf("unexpected path %s", path)
		return nil
	})

	res, err := c.Order(context.Background(), "ORD-20261016-000001", "TR-3GB-30", 2)
	require.NoError(t, err)
	assert.Equal(t, "B2610160001", res.OrderNo)

	profiles, err := c.QueryProfiles(context.Background(), res.OrderNo)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "8999", profiles[0].ICCID)
}

func TestClient_SupplierError(t *testing.T) {
	c := newTestServer(t, func(string, map[string]any) any {
		return map[string]any{"success": false, "errorCode": "200007", "errorMsg": "insufficient balance"}
	})

	err := c.Suspend(context.Background(), "8999")
	var supplierErr *Error
	require.ErrorAs(t, err, &supplierErr)
	assert.Equal(t, "200007", supplierErr.Code)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret", 0).ListPackages(context.Background())
	assert.Error(t, err)
}
