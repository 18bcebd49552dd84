package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	for _, tc := range []struct {
		kind    string
		window  int
		wantErr error
	}{
		{kind: KindEMA, window: 4},
		{kind: KindDEMA, window: 4},
		{kind: KindSMA, window: 2},
		{kind: KindNone, window: 1},
		{kind: "EWMA", window: 4, wantErr: ErrUnknownKind},
		{kind: KindEMA, window: 0, wantErr: ErrInvalidWindow},
		{kind: KindDEMA, window: 0, wantErr: ErrInvalidWindow},
		{kind: KindSMA, window: -1, wantErr: ErrInvalidWindow},
	} {
		f, err := New(tc.kind, tc.window, 0)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr)
		} else {
			require.NoError(t, err)
			assert.NotNil(t, f)
		}
	}
}

func TestNoneIsPassThrough(t *testing.T) {
	f, err := New(KindNone, 1, 0)
	require.NoError(t, err)

	for _, value := range []float64{0, 1.5, -3, 1e9} {
		assert.Equal(t, value, f.Next(value))
	}
}

func TestEMA(t *testing.T) {
	// window 3 gives alpha 0.5
	ema, err := NewEMA(3, 0)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, ema.Next(10), 1e-9)
	assert.InDelta(t, 7.5, ema.Next(10), 1e-9)
	assert.InDelta(t, 8.75, ema.Next(10), 1e-9)
}

func TestDEMA(t *testing.T) {
	dema, err := NewDEMA(3, 0)
	require.NoError(t, err)

	// inner 5, outer 2.5 -> 2*5 - 2.5
	assert.InDelta(t, 7.5, dema.Next(10), 1e-9)
}

func TestDEMATracksFasterThanEMA(t *testing.T) {
	ema, err := NewEMA(5, 0)
	require.NoError(t, err)
	dema, err := NewDEMA(5, 0)
	require.NoError(t, err)

	var emaOut, demaOut float64
	for i := 0; i < 10; i++ {
		emaOut = ema.Next(100)
		demaOut = dema.Next(100)
	}

	assert.Greater(t, demaOut, emaOut)
}

func TestSMA(t *testing.T) {
	sma, err := NewSMA(2, 3)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, sma.Peek(), 1e-9)
	assert.InDelta(t, 4.0, sma.Next(5), 1e-9)
	assert.InDelta(t, 5.0, sma.Next(5), 1e-9)
	// Peek does not consume
	assert.InDelta(t, 5.0, sma.Peek(), 1e-9)
	assert.InDelta(t, 5.0, sma.Peek(), 1e-9)
}

func TestSMAWindowRolls(t *testing.T) {
	sma, err := NewSMA(3, 0)
	require.NoError(t, err)

	sma.Next(3)
	sma.Next(6)
	assert.InDelta(t, 3.0, sma.Next(0), 1e-9)
	// oldest sample (3) rolls out of the window here
	assert.InDelta(t, 2.0, sma.Next(0), 1e-9)
}
