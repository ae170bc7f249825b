package escrow

import "fmt"

// Payout is one wallet credit produced by a release.
type Payout struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
}

// Split is the result of dividing an escrow between its recipients.
type Split struct {
	OrganizerShare int64    `json:"organizer_share"`
	GigsShare      int64    `json:"gigs_share"`
	PerGig         int64    `json:"per_gig"`
	Payouts        []Payout `json:"payouts"`
}

// ComputeSplit divides amount in minor units. The organizer receives
// amount*organizerPct/100 rounded down and the rest is shared equally by the
// attended gigs, in the given order, with the leftover paise going one each to
// the first gigs. Shares nobody can receive (no organizer assigned, nobody
// attended) go back to the host. The payouts always sum to amount.
func ComputeSplit(amount int64, organizerPct int, hostID uint, organizerID *uint, attendedGigs []uint) (Split, error) {
	if amount <= 0 {
		return Split{}, fmt.Errorf("escrow amount must be positive, got %d", amount)
	}
	if organizerPct < 0 || organizerPct > 100 {
		return Split{}, fmt.Errorf("organizer percentage out of range: %d", organizerPct)
	}

	s := Split{
		OrganizerShare: amount * int64(organizerPct) / 100,
	}
	s.GigsShare = amount - s.OrganizerShare

	var hostRefund int64
	if s.OrganizerShare > 0 {
		if organizerID != nil {
			s.Payouts = append(s.Payouts, Payout{UserID: *organizerID, Role: "organizer", Amount: s.OrganizerShare, Category: categoryRelease})
		} else {
			hostRefund += s.OrganizerShare
		}
	}

	if n := int64(len(attendedGigs)); n > 0 && s.GigsShare > 0 {
		s.PerGig = s.GigsShare / n
		remainder := s.GigsShare % n
		for i, gigID := range attendedGigs {
			share := s.PerGig
			if int64(i) < remainder {
				share++
			}
			if share > 0 {
				s.Payouts = append(s.Payouts, Payout{UserID: gigID, Role: "gig", Amount: share, Category: categoryRelease})
			}
		}
	} else {
		hostRefund += s.GigsShare
	}

	if hostRefund > 0 {
		s.Payouts = append(s.Payouts, Payout{UserID: hostID, Role: "host", Amount: hostRefund, Category: categoryRefund})
	}
	return s, nil
}
