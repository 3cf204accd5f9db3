package sync

// recorder tallies a run. The primary category feeds the SyncLog totals;
// secondary ones (users, links, line items, notifications) only appear in Details.
type recorder struct {
	primary string
	counts  map[string]*Counts
	order   []string
}

func newRecorder(primary string) *recorder {
	r := &recorder{primary: primary, counts: map[string]*Counts{}}
	r.get(primary)
	return r
}

func (r *recorder) get(category string) *Counts {
	c, ok := r.counts[category]
	if !ok {
		c = &Counts{}
		r.counts[category] = c
		r.order = append(r.order, category)
	}
	return c
}

func (r *recorder) created(category string) {
	c := r.get(category)
	c.Processed++
	c.Created++
}

func (r *recorder) updated(category string) {
	c := r.get(category)
	c.Processed++
	c.Updated++
}

// seen counts a record that needed no write.
func (r *recorder) seen(category string) {
	r.get(category).Processed++
}

func (r *recorder) failed(category string) {
	r.get(category).Failed++
}

func (r *recorder) add(category string, n int) {
	c := r.get(category)
	c.Processed += n
	c.Created += n
}

func (r *recorder) totals() Counts {
	return *r.get(r.primary)
}

func (r *recorder) details() map[string]Counts {
	out := make(map[string]Counts, len(r.counts))
	for _, k := range r.order {
		out[k] = *r.counts[k]
	}
	return out
}
