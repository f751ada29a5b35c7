package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_String(t *testing.T) {
	assert.Equal(t, "40", NumberCell(40).String())
	assert.Equal(t, "1234.5", NumberCell(1234.5).String())
	assert.Equal(t, "11144477735", NumberCell(11144477735).String())
	assert.Equal(t, " texto ", TextCell(" texto ").String())
	assert.Equal(t, "", Cell{}.String())
}

func TestCell_Empty(t *testing.T) {
	assert.True(t, Cell{}.Empty())
	assert.True(t, TextCell("  ").Empty())
	assert.False(t, TextCell("x").Empty())
	assert.False(t, NumberCell(0).Empty())
}

func TestCell_Money(t *testing.T) {
	v, err := NumberCell(1500.25).Money()
	require.NoError(t, err)
	assert.Equal(t, 1500.25, v)

	v, err = TextCell("1.234,56").Money()
	require.NoError(t, err)
	assert.InDelta(t, 1234.56, v, 1e-9)

	v, err = Cell{}.Money()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = TextCell("mil reais").Money()
	assert.Error(t, err)
}

func TestCell_Date(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
		ok   bool
	}{
		{"day first with slashes", TextCell("15/03/1985"), "1985-03-15", true},
		{"day first without padding", TextCell("5/3/1985"), "1985-03-05", true},
		{"day first with dashes", TextCell("15-03-1985"), "1985-03-15", true},
		{"day first short year without padding", TextCell("15/3/85"), "1985-03-15", true},
		{"iso date", TextCell("1985-03-15"), "1985-03-15", true},
		{"iso date without padding", TextCell("1985-3-5"), "1985-03-05", true},
		{"iso timestamp", TextCell("1985-03-15 00:00:00"), "1985-03-15", true},
		{"excel serial", NumberCell(31121), "1985-03-15", true},
		{"blank", Cell{}, "", false},
		{"garbage", TextCell("não informado"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cell.Date()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(time.DateOnly))
			}
		})
	}
}
