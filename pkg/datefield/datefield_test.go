package datefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask_PartialStates(t *testing.T) {
	tests := []struct {
		raw     string
		display string
	}{
		{"", ""},
		{"1", "1"},
		{"15", "15"},
		{"150", "15/0"},
		{"1503", "15/03"},
		{"15032", "15/03/2"},
		{"1503202", "15/03/202"},
		{"15/03/2024", "15/03/2024"},
		{"ab15-03x2024", "15/03/2024"},
		{"150320241", "15/03/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			display, _, _ := Mask(tt.raw)
			assert.Equal(t, tt.display, display)
		})
	}
}

func TestMask_CompletesOnlyAtEightDigits(t *testing.T) {
	_, iso, complete := Mask("1503202")
	assert.False(t, complete)
	assert.Empty(t, iso)

	_, iso, complete = Mask("15032024")
	assert.True(t, complete)
	assert.Equal(t, "2024-03-15", iso)

	_, iso, complete = Mask("150320241")
	assert.False(t, complete)
	assert.Empty(t, iso)
}

func TestMask_NoRangeValidation(t *testing.T) {
	_, iso, complete := Mask("99999999")
	assert.True(t, complete)
	assert.Equal(t, "9999-99-99", iso)
}

func TestField_KeystrokeByKeystroke(t *testing.T) {
	var emitted []string
	f := &Field{OnComplete: func(iso string) { emitted = append(emitted, iso) }}

	content := ""
	for _, r := range "15032024" {
		content = f.Input(content + string(r))
	}

	assert.Equal(t, "15/03/2024", content)
	assert.Equal(t, "15/03/2024", f.Display())
	require.Len(t, emitted, 1)
	assert.Equal(t, "2024-03-15", emitted[0])
	assert.Equal(t, "2024-03-15", f.Value())
}

func TestField_SetValue(t *testing.T) {
	var f Field

	f.SetValue("2024-03-15")
	assert.Equal(t, "15/03/2024", f.Display())
	assert.Equal(t, "2024-03-15", f.Value())

	f.SetValue("01/02/2024")
	assert.Equal(t, "01/02/2024", f.Display())
	assert.Equal(t, "2024-02-01", f.Value())

	f.SetValue("")
	assert.Empty(t, f.Display())
	assert.Empty(t, f.Value())
}

func TestField_BackspaceDropsCompletedValue(t *testing.T) {
	completions := 0
	f := &Field{OnComplete: func(string) { completions++ }}

	f.Input("15032024")
	require.Equal(t, "2024-03-15", f.Value())

	display := f.Input("15/03/202")
	assert.Equal(t, "15/03/202", display)
	assert.Empty(t, f.Value())

	f.Input("15/03/2025")
	assert.Equal(t, "2025-03-15", f.Value())
	assert.Equal(t, 2, completions)
}
