package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTable_IsValid(t *testing.T) {
	assert.NoError(t, DefaultTable().Validate())
}

func TestTable_Validate(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Error(t, Table{}.Validate())
	})

	t.Run("Missing Environment", func(t *testing.T) {
		table := Table{"X": {Dev: "http://a", Test: "http://a", Prod: "http://a"}}
		err := table.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "X.stage")
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("Invalid URI", func(t *testing.T) {
		table := Table{"X": {Dev: "not a url", Test: "http://a", Stage: "http://a", Prod: "http://a"}}
		err := table.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "'url'")
	})

	t.Run("Duplicate Service By Case", func(t *testing.T) {
		envs := map[Environment]string{Dev: "http://a", Test: "http://a", Stage: "http://a", Prod: "http://a"}
		table := Table{"IDENTITY": envs, "Identity": envs}
		err := table.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "serviço duplicado 'Identity'")
	})

	t.Run("Unknown Environment", func(t *testing.T) {
		table := Table{"X": {Dev: "http://a", Test: "http://a", Stage: "http://a", Prod: "http://a", "qa": "http://a"}}
		err := table.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "qa")
	})
}

func TestTable_Clone(t *testing.T) {
	table := Table{"lower": {Prod: "http://a"}}
	cp := table.Clone()

	assert.Contains(t, cp, "LOWER")
	cp["LOWER"][Prod] = "http://b"
	assert.Equal(t, "http://a", table["lower"][Prod])
}

func TestTable_CloneIsDeterministicOnCaseCollision(t *testing.T) {
	table := Table{
		"Identity": {Prod: "http://lower"},
		"IDENTITY": {Prod: "http://upper"},
	}
	for i := 0; i < 20; i++ {
		cp := table.Clone()
		assert.Len(t, cp, 1)
		assert.Equal(t, "http://upper", cp["IDENTITY"][Prod])
	}
}
