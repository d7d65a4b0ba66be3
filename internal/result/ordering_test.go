package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderingMap(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		native  []int
		wantErr bool
	}{
		{"nil is identity", nil, false},
		{"permutation", []int{2, 0, 1}, false},
		{"subset", []int{1, 5, 3}, false},
		{"duplicate", []int{0, 1, 0}, true},
		{"negative", []int{0, -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderingMap(tt.native)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRange(t *testing.T) {
	t.Parallel()
	m, err := Range(1, 4)
	require.NoError(t, err)
	assert.Equal(t, OrderingMap{1, 2, 3}, m)

	_, err = Range(3, 1)
	assert.Error(t, err)
}

func TestOrderingMap_Gather(t *testing.T) {
	t.Parallel()
	native := []float64{10, 11, 12, 13}

	var identity OrderingMap
	got, err := identity.Gather(native)
	require.NoError(t, err)
	assert.Equal(t, native, got)

	m, err := NewOrderingMap([]int{3, 0})
	require.NoError(t, err)
	got, err = m.Gather(native)
	require.NoError(t, err)
	assert.Equal(t, []float64{13, 10}, got)

	short, err := NewOrderingMap([]int{7})
	require.NoError(t, err)
	_, err = short.Gather(native)
	assert.Error(t, err)
}

func TestOrderingMap_Native(t *testing.T) {
	t.Parallel()
	m, err := NewOrderingMap([]int{4, 2})
	require.NoError(t, err)

	n, err := m.Native(1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.Native(2)
	assert.Error(t, err)

	var identity OrderingMap
	n, err = identity.Native(5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, identity.IsIdentity())
}
