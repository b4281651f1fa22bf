package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"Ccy":"USD","Rate":"12850.37","Date":"16.10.2026"}]`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"rate", "--url", srv.URL})

	require.NoError(t, root.Execute())
	assert.Equal(t, "1 USD = 12850.37 UZS (16.10.2026, via direct)\n", out.String())
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "down", "--steps", "0"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}

func TestPartnerCreateRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"partner", "create", "--email", "a@example.com"})

	assert.Error(t, root.Execute())
}
