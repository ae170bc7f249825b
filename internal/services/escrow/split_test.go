package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(payouts []Payout) int64 {
	var total int64
	for _, p := range payouts {
		total += p.Amount
	}
	return total
}

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       int64
		organizerPct int
		organizer    *uint
		gigs         []uint
		want         []Payout
	}{
		{
			name:         "even split",
			amount:       100000,
			organizerPct: 20,
			organizer:    uintPtr(2),
			gigs:         []uint{10, 11},
			want: []Payout{
				{UserID: 2, Role: "organizer", Amount: 20000, Category: categoryRelease},
				{UserID: 10, Role: "gig", Amount: 40000, Category: categoryRelease},
				{UserID: 11, Role: "gig", Amount: 40000, Category: categoryRelease},
			},
		},
		{
			name:         "remainder goes to first gigs",
			amount:       1001,
			organizerPct: 30,
			organizer:    uintPtr(2),
			gigs:         []uint{10, 11, 12},
			want: []Payout{
				{UserID: 2, Role: "organizer", Amount: 300, Category: categoryRelease},
				{UserID: 10, Role: "gig", Amount: 234, Category: categoryRelease},
				{UserID: 11, Role: "gig", Amount: 234, Category: categoryRelease},
				{UserID: 12, Role: "gig", Amount: 233, Category: categoryRelease},
			},
		},
		{
			name:         "nobody attended",
			amount:       50000,
			organizerPct: 40,
			organizer:    uintPtr(2),
			want: []Payout{
				{UserID: 2, Role: "organizer", Amount: 20000, Category: categoryRelease},
				{UserID: 1, Role: "host", Amount: 30000, Category: categoryRefund},
			},
		},
		{
			name:         "no organizer assigned",
			amount:       50000,
			organizerPct: 40,
			gigs:         []uint{10},
			want: []Payout{
				{UserID: 10, Role: "gig", Amount: 30000, Category: categoryRelease},
				{UserID: 1, Role: "host", Amount: 20000, Category: categoryRefund},
			},
		},
		{
			name:         "all to gigs",
			amount:       999,
			organizerPct: 0,
			organizer:    uintPtr(2),
			gigs:         []uint{10, 11},
			want: []Payout{
				{UserID: 10, Role: "gig", Amount: 500, Category: categoryRelease},
				{UserID: 11, Role: "gig", Amount: 499, Category: categoryRelease},
			},
		},
		{
			name:         "more gigs than paise",
			amount:       2,
			organizerPct: 0,
			organizer:    uintPtr(2),
			gigs:         []uint{10, 11, 12},
			want: []Payout{
				{UserID: 10, Role: "gig", Amount: 1, Category: categoryRelease},
				{UserID: 11, Role: "gig", Amount: 1, Category: categoryRelease},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSplit(tt.amount, tt.organizerPct, 1, tt.organizer, tt.gigs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Payouts)
			assert.Equal(t, tt.amount, sum(got.Payouts))
			assert.Equal(t, tt.amount, got.OrganizerShare+got.GigsShare)
		})
	}
}

func TestComputeSplit_Invalid(t *testing.T) {
	_, err := ComputeSplit(0, 20, 1, nil, nil)
	assert.Error(t, err)
	_, err = ComputeSplit(100, 120, 1, nil, nil)
	assert.Error(t, err)
}
