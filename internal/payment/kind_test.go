package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		name string
		want Kind
	}{
		{"MINIMARKET", "Bayar di Minimarket", KindMinimarket},
		{"ALFAMART", "Alfamart", KindMinimarket},
		{"INDOMARET", "Indomaret", KindMinimarket},
		{"COD", "Cash on Delivery", KindCash},
		{"CASH", "Bayar Tunai", KindCash},
		{"QRIS", "QRIS", KindQris},
		{"DANA", "DANA", KindQris},
		{"", "", KindQris},
		{"gopay", "GoPay QRIS", KindQris},
		{"alfa-group", "Retail", KindMinimarket},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.code, c.name), "%s/%s", c.code, c.name)
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindQris.Valid())
	assert.True(t, KindMinimarket.Valid())
	assert.True(t, KindCash.Valid())
	assert.False(t, Kind("wire").Valid())
}

func TestInstructions(t *testing.T) {
	for _, k := range []Kind{KindQris, KindMinimarket, KindCash} {
		assert.NotEmpty(t, Instructions(k))
	}
	assert.Empty(t, Instructions(Kind("wire")))
}
