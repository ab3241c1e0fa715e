package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleCheckDirectEdit(t *testing.T) {
	jobID := int64(3)
	linked := Sale{ID: 10, Type: SaleSewing, CustomerName: "Ada", TotalAmount: d("3000"), AmountPaid: d("3000"), CostAmount: d("800"), JobID: &jobID}

	notes := linked
	notes.Notes = "picked up"
	require.NoError(t, linked.CheckDirectEdit(&notes))

	retyped := linked
	retyped.Type = SaleOther
	assert.ErrorIs(t, linked.CheckDirectEdit(&retyped), ErrJobSale)

	repaid := linked
	repaid.AmountPaid = d("1000")
	assert.ErrorIs(t, linked.CheckDirectEdit(&repaid), ErrJobSale)

	moved := linked
	moved.CustomerName = "Bola"
	assert.ErrorIs(t, linked.CheckDirectEdit(&moved), ErrJobSale)

	assert.ErrorIs(t, linked.CheckDirectEdit(nil), ErrJobSale, "delete")

	counter := Sale{Type: SaleFabric, TotalAmount: d("500")}
	require.NoError(t, counter.CheckDirectEdit(nil))
	changed := counter
	changed.Type = SaleOther
	require.NoError(t, counter.CheckDirectEdit(&changed))
}
