package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

func TestEncodeDecode(t *testing.T) {
	t.Setenv("ID_SECRET", "cli-secret")

	var enc bytes.Buffer
	require.NoError(t, runEncode(&enc, []string{"42"}))
	fields := strings.Fields(enc.String())
	require.Len(t, fields, 2)
	assert.Equal(t, "42", fields[0])

	var dec bytes.Buffer
	require.NoError(t, runDecode(&dec, []string{fields[1]}))
	assert.Equal(t, fields[1]+"\t42\n", dec.String())

	assert.Error(t, runEncode(&enc, []string{"x"}))
	assert.Error(t, runDecode(&dec, []string{"zz"}))
	assert.Error(t, runEncode(&enc, nil))
}

func TestEncode_RequiresSecret(t *testing.T) {
	t.Setenv("ID_SECRET", "")
	assert.Error(t, runEncode(&bytes.Buffer{}, []string{"1"}))
}

func TestSchemas(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSchemas(&out, nil))
	var all []domain.SchemaSpec
	require.NoError(t, json.Unmarshal(out.Bytes(), &all))
	assert.Len(t, all, 4)

	out.Reset()
	require.NoError(t, runSchemas(&out, []string{"Summary"}))
	assert.Contains(t, out.String(), `"allow_unknown_fields": true`)

	assert.Error(t, runSchemas(&out, []string{"Nope"}))
}

func TestValidate(t *testing.T) {
	t.Setenv("ID_SECRET", "cli-secret")

	t.Run("valid list query", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, strings.NewReader(`{"limit": 10, "sort_by": "title"}`), []string{"ListQuery", "-"})
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &raw))
		assert.Equal(t, float64(10), raw["limit"])
		assert.Equal(t, "title", raw["sort_by"])
		assert.Equal(t, true, raw["sort_desc"])
	})

	t.Run("reports every error", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, strings.NewReader(`{"limit": 1000, "sort_by": "size"}`), []string{"ListQuery", "-"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)

		var fes []domain.FieldError
		require.NoError(t, json.Unmarshal(out.Bytes(), &fes))
		require.Len(t, fes, 2)
		assert.Equal(t, "sort_by", fes[0].Field)
		assert.Equal(t, "limit", fes[1].Field)
	})

	t.Run("oversized integer literal", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, strings.NewReader(`{"limit": 99999999999999999999}`), []string{"ListQuery", "-"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Errors, 1)
		assert.Equal(t, "limit", verr.Errors[0].Field)
		assert.Equal(t, "int_parsing", verr.Errors[0].Type)
	})

	t.Run("summary list", func(t *testing.T) {
		var out bytes.Buffer
		in := `[{"id": "abc", "deleted": false, "importable": false, "published": true, "tags": null, "title": "t", "type": "x", "username": "u"}]`
		require.NoError(t, runValidate(&out, strings.NewReader(in), []string{"SummaryList", "-"}))
		assert.Contains(t, out.String(), `"id": "abc"`)
	})

	t.Run("unknown schema", func(t *testing.T) {
		err := runValidate(&bytes.Buffer{}, strings.NewReader(`{}`), []string{"Nope", "-"})
		assert.ErrorContains(t, err, "unknown schema")
	})
}
