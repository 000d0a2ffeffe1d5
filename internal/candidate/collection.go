package candidate

import "sort"

// Candidates is an ordered collection of candidate records.
type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Shortlisted returns a new collection holding only shortlisted candidates.
func (c *Candidates) Shortlisted() *Candidates {
	out := &Candidates{}
	for _, item := range c.Items {
		if item.IsShortlisted {
			out.Items = append(out.Items, item)
		}
	}
	return out
}

// SortByScore orders the collection by final score descending, breaking ties
// by ATS score descending. The sort is stable so equal candidates keep their
// insertion order.
func (c *Candidates) SortByScore() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		if c.Items[i].FinalScore != c.Items[j].FinalScore {
			return c.Items[i].FinalScore > c.Items[j].FinalScore
		}
		return c.Items[i].ATSScore > c.Items[j].ATSScore
	})
}
